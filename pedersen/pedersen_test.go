// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pedersen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/blsct/arith/bls12381"
	"github.com/luxfi/blsct/generators"
)

func setup(t *testing.T) (*bls12381.Backend, *Committer[bls12381.Scalar, bls12381.Point], generators.Generators[bls12381.Point]) {
	be := bls12381.NewBackend()
	gf := generators.NewFactory[bls12381.Scalar, bls12381.Point](be, 8)
	gens, err := gf.GetInstance([]byte("pedersen"))
	require.NoError(t, err)
	return be, NewCommitter[bls12381.Scalar, bls12381.Point](be), gens
}

func TestPedersen_CommitVerify(t *testing.T) {
	be, c, gens := setup(t)

	gamma, err := be.RandomScalar()
	require.NoError(t, err)

	commitment := c.CommitUint64(gens, 1000, gamma)
	require.True(t, c.Verify(gens, commitment, be.ScalarFromUint64(1000), gamma))
	require.False(t, c.Verify(gens, commitment, be.ScalarFromUint64(1001), gamma))

	commits, verifies := c.Stats()
	require.Equal(t, uint64(1), commits)
	require.Equal(t, uint64(2), verifies)
}

func TestPedersen_Homomorphic(t *testing.T) {
	be, c, gens := setup(t)

	g1, err := be.RandomScalar()
	require.NoError(t, err)
	g2, err := be.RandomScalar()
	require.NoError(t, err)

	c1 := c.CommitUint64(gens, 300, g1)
	c2 := c.CommitUint64(gens, 700, g2)
	sum := c.CommitUint64(gens, 1000, g1.Add(g2))

	require.True(t, c1.Add(c2).Equal(sum))
	require.True(t, c.VerifyBalance([]bls12381.Point{sum}, []bls12381.Point{c1, c2}))
	require.False(t, c.VerifyBalance([]bls12381.Point{sum}, []bls12381.Point{c1}))
}

func TestPedersen_VectorCommit(t *testing.T) {
	be, c, gens := setup(t)

	a := []bls12381.Scalar{be.ScalarFromUint64(1), be.ScalarFromUint64(2)}
	b := []bls12381.Scalar{be.ScalarFromUint64(3), be.ScalarFromUint64(4)}
	gamma := be.ScalarFromUint64(5)

	got, err := c.VectorCommit(gens.Gi[:2], a, gens.Hi[:2], b, gens.H, gamma)
	require.NoError(t, err)

	want := gens.Gi[0].Mul(a[0]).Add(gens.Gi[1].Mul(a[1])).
		Add(gens.Hi[0].Mul(b[0])).Add(gens.Hi[1].Mul(b[1])).
		Add(gens.H.Mul(gamma))
	require.True(t, want.Equal(got))

	_, err = c.VectorCommit(gens.Gi[:1], a, nil, nil, gens.H, gamma)
	require.Error(t, err)
}
