package nn

import (
	"fmt"

	"github.com/born-ml/links/internal/parallel"
	"github.com/born-ml/links/internal/tensor"
)

// convOutSize returns the output extent of a convolution along one axis.
func convOutSize(size, k, stride, pad, dilate int) int {
	return (size+2*pad-dilate*(k-1)-1)/stride + 1
}

// deconvOutSize returns the default output extent of a transposed convolution.
func deconvOutSize(size, k, stride, pad int) int {
	return stride*(size-1) + k - 2*pad
}

// conv2d performs 2D convolution using the im2col algorithm.
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_out, C_in, K, K]
// Output shape: [N, C_out, H_out, W_out]
//
// Algorithm, per batch item:
//  1. Im2col: gather input patches into columns [C_in*K*K, H_out*W_out]
//  2. MatMul: kernel [C_out, C_in*K*K] @ columns -> [C_out, H_out*W_out]
//
// Batch items are independent and run through parallel.For.
func conv2d(op string, input, kernel *tensor.Tensor, stride, pad, dilate int, cfg parallel.Config) *tensor.Tensor {
	inShape := input.Shape()
	kShape := kernel.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %v", op, inShape))
	}
	n, cIn, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	cOut, kh, kw := kShape[0], kShape[2], kShape[3]
	if kShape[1] != cIn {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, cIn, kShape[1]))
	}
	hOut := convOutSize(h, kh, stride, pad, dilate)
	wOut := convOutSize(w, kw, stride, pad, dilate)
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output size %dx%d for input %v (check stride/pad/dilate)", op, hOut, wOut, inShape))
	}

	out := tensor.Zeros(tensor.Shape{n, cOut, hOut, wOut}, input.DType())
	x := input.Data()
	k := kernel.Data()
	dst := out.Data()
	colWidth := cIn * kh * kw
	colHeight := hOut * wOut

	parallel.For(n, func(b int) {
		// colBuf: [H_out*W_out, C_in*K*K], row-major per output position.
		colBuf := make([]float64, colHeight*colWidth)
		for c := 0; c < cIn; c++ {
			for i := 0; i < kh; i++ {
				for j := 0; j < kw; j++ {
					col := (c*kh+i)*kw + j
					for oh := 0; oh < hOut; oh++ {
						ih := oh*stride - pad + i*dilate
						if ih < 0 || ih >= h {
							continue
						}
						for ow := 0; ow < wOut; ow++ {
							iw := ow*stride - pad + j*dilate
							if iw < 0 || iw >= w {
								continue
							}
							colBuf[(oh*wOut+ow)*colWidth+col] = x[((b*cIn+c)*h+ih)*w+iw]
						}
					}
				}
			}
		}
		for o := 0; o < cOut; o++ {
			kernelRow := k[o*colWidth : (o+1)*colWidth]
			outRow := dst[(b*cOut+o)*colHeight : (b*cOut+o+1)*colHeight]
			for p := 0; p < colHeight; p++ {
				patch := colBuf[p*colWidth : (p+1)*colWidth]
				sum := 0.0
				for q, kv := range kernelRow {
					sum += kv * patch[q]
				}
				outRow[p] = sum
			}
		}
	}, cfg)

	dtype := input.DType()
	for i, v := range dst {
		dst[i] = dtype.Round(v)
	}
	return out
}

// deconv2d performs a 2D transposed convolution (the gradient of conv2d with
// respect to its input).
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_in, C_out, K, K]
// Output shape: [N, C_out, outH, outW]
//
// Every input element scatters its kernel-weighted contribution into the output;
// contributions falling outside [0, outH) × [0, outW) are dropped.
func deconv2d(op string, input, kernel *tensor.Tensor, stride, pad, outH, outW int, cfg parallel.Config) *tensor.Tensor {
	inShape := input.Shape()
	kShape := kernel.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %v", op, inShape))
	}
	n, cIn, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	cOut, kh, kw := kShape[1], kShape[2], kShape[3]
	if kShape[0] != cIn {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, cIn, kShape[0]))
	}

	out := tensor.Zeros(tensor.Shape{n, cOut, outH, outW}, input.DType())
	x := input.Data()
	k := kernel.Data()
	dst := out.Data()

	parallel.For(n, func(b int) {
		for c := 0; c < cIn; c++ {
			for ih := 0; ih < h; ih++ {
				for iw := 0; iw < w; iw++ {
					v := x[((b*cIn+c)*h+ih)*w+iw]
					if v == 0 {
						continue
					}
					for o := 0; o < cOut; o++ {
						for i := 0; i < kh; i++ {
							oh := ih*stride - pad + i
							if oh < 0 || oh >= outH {
								continue
							}
							for j := 0; j < kw; j++ {
								ow := iw*stride - pad + j
								if ow < 0 || ow >= outW {
									continue
								}
								dst[((b*cOut+o)*outH+oh)*outW+ow] += v * k[((c*cOut+o)*kh+i)*kw+j]
							}
						}
					}
				}
			}
		}
	}, cfg)

	dtype := input.DType()
	for i, v := range dst {
		dst[i] = dtype.Round(v)
	}
	return out
}

// addChannelBias adds bias[c] to every element of channel c of an NCHW tensor.
func addChannelBias(out *tensor.Tensor, bias *Parameter) *tensor.Tensor {
	if bias == nil {
		return out
	}
	return out.Add(bias.Tensor().Reshape(1, -1, 1, 1))
}
