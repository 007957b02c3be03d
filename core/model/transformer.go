package model

import "gonum.org/v1/gonum/mat"

// Transformer learns a feature mapping from data and applies it.
type Transformer interface {
	// Fit learns the mapping from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned mapping to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform is Fit followed by Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer can map transformed data back to the input space.
type InverseTransformer interface {
	Transformer
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}
