// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sequential

import (
	"fmt"
	"strings"

	"github.com/born-ml/links/nn"
	"github.com/dustin/go-humanize"
)

// SummaryRow describes one built stage.
type SummaryRow struct {
	Index  int
	Stage  string
	Unit   string // Go type of the built module
	Params int    // scalar weights; lazily-sized layers report 0 before their first Forward
}

// Summary returns one row per stage.
func (n *Network) Summary() []SummaryRow {
	rows := make([]SummaryRow, len(n.model.stages))
	for i, stage := range n.model.stages {
		module := n.seq.Module(i)
		rows[i] = SummaryRow{
			Index:  i,
			Stage:  stage.String(),
			Unit:   fmt.Sprintf("%T", module),
			Params: nn.CountParameters(module),
		}
	}
	return rows
}

// String renders the summary as plain text.
func (n *Network) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model %q (%s)\n", n.model.Name, n.model.ID)
	total := 0
	for _, r := range n.Summary() {
		fmt.Fprintf(&b, "  %2d  %-24s %12s\n", r.Index, r.Stage, humanize.Comma(int64(r.Params)))
		total += r.Params
	}
	fmt.Fprintf(&b, "Total parameters: %s\n", humanize.Comma(int64(total)))
	return b.String()
}
