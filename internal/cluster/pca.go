package cluster

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dimensions is the size of the projected space.
const Dimensions = 3

var ErrDecomposition = errors.New("principal component decomposition failed")

// Project3D projects vectors onto their first three principal components
// after mean-centring. Missing components (fewer points or dimensions than
// three) are returned as zero.
func Project3D(vectors [][]float64) ([][Dimensions]float64, error) {
	n := len(vectors)
	out := make([][Dimensions]float64, n)
	if n < 2 {
		return out, nil
	}
	d := len(vectors[0])
	for _, v := range vectors {
		if len(v) != d {
			return nil, ErrDimensionMismatch
		}
	}
	if d == 0 {
		return out, nil
	}

	data := mat.NewDense(n, d, nil)
	for i, v := range vectors {
		data.SetRow(i, v)
	}
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, data)
		mean := stat.Mean(col, nil)
		for i := range col {
			data.Set(i, j, col[i]-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, ErrDecomposition
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	_, c := vecs.Dims()
	k := min(Dimensions, c)
	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, d, 0, k))

	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out[i][j] = proj.At(i, j)
		}
	}
	return out, nil
}
