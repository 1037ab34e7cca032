package anchor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 4: Merkle of one.
func TestBuildMerkleOfOne(t *testing.T) {
	b0 := []byte("leaf-0")
	tree := Build([][]byte{b0})

	expectedRoot := hashLeaf(b0)
	assert.Equal(t, expectedRoot, tree.Root)
	assert.Equal(t, expectedRoot[:], tree.DAG)
	assert.Equal(t, 1, tree.LeafCount)
}

// Scenario 5: Merkle of three — the odd trailing node at level
// 1 carries up unchanged, no duplication.
func TestBuildMerkleOfThree(t *testing.T) {
	a, b, c := []byte("a"), []byte("b"), []byte("c")
	tree := Build([][]byte{a, b, c})

	ha, hb, hc := hashLeaf(a), hashLeaf(b), hashLeaf(c)
	level1AB := hashPair(ha, hb)
	root := hashPair(level1AB, hc)

	assert.Equal(t, root, tree.Root)

	var wantDAG []byte
	wantDAG = append(wantDAG, ha[:]...)
	wantDAG = append(wantDAG, hb[:]...)
	wantDAG = append(wantDAG, hc[:]...)
	wantDAG = append(wantDAG, level1AB[:]...)
	wantDAG = append(wantDAG, hc[:]...)
	wantDAG = append(wantDAG, root[:]...)

	assert.Equal(t, wantDAG, tree.DAG)
}

func TestBuildMerkleEmptyBatch(t *testing.T) {
	tree := Build(nil)
	assert.Equal(t, [rootSize]byte{}, tree.Root)
	assert.Empty(t, tree.DAG)
	assert.Equal(t, 0, tree.LeafCount)
}

func TestBuildMerkleDeterministic(t *testing.T) {
	batch := [][]byte{[]byte("x"), []byte("y"), []byte("z"), []byte("w")}
	t1 := Build(batch)
	t2 := Build(batch)
	assert.Equal(t, t1.Root, t2.Root)
	assert.Equal(t, t1.DAG, t2.DAG)
}

// Packet-hash agreement: the first 32*k bytes of dag equal the
// leaves in ingest order.
func TestDAGLeadingBytesMatchLeavesInOrder(t *testing.T) {
	batch := [][]byte{[]byte("p"), []byte("q"), []byte("r")}
	tree := Build(batch)

	require.GreaterOrEqual(t, len(tree.DAG), rootSize*len(batch))
	for i, leaf := range batch {
		want := hashLeaf(leaf)
		got := tree.DAG[i*rootSize : (i+1)*rootSize]
		assert.Equal(t, want[:], got)
	}
}

// Merkle reconstructability: given the stored dag and a leaf index, an
// inclusion proof to root exists and verifies, for both even and odd
// batch sizes (exercising the odd-trailing-node pass-through case).
func TestInclusionProofVerifiesForEveryLeaf(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8} {
		batch := make([][]byte, n)
		for i := range batch {
			batch[i] = []byte(fmt.Sprintf("leaf-%d", i))
		}
		tree := Build(batch)

		for i, leaf := range batch {
			proof, err := InclusionProof(tree.DAG, tree.LeafCount, i)
			require.NoError(t, err, "n=%d i=%d", n, i)
			assert.True(t, VerifyInclusion(hashLeaf(leaf), proof, tree.Root), "n=%d i=%d", n, i)
		}
	}
}

func TestInclusionProofRejectsOutOfRangeIndex(t *testing.T) {
	tree := Build([][]byte{[]byte("a"), []byte("b")})
	_, err := InclusionProof(tree.DAG, tree.LeafCount, 2)
	assert.Error(t, err)
}

func TestInclusionProofFailsToVerifyWrongLeaf(t *testing.T) {
	tree := Build([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	proof, err := InclusionProof(tree.DAG, tree.LeafCount, 0)
	require.NoError(t, err)
	assert.False(t, VerifyInclusion(hashLeaf([]byte("not-a")), proof, tree.Root))
}

func TestDAGLengthIsMultipleOf32(t *testing.T) {
	for n := 0; n < 8; n++ {
		batch := make([][]byte, n)
		for i := range batch {
			batch[i] = []byte{byte(i)}
		}
		tree := Build(batch)
		assert.Equal(t, 0, len(tree.DAG)%rootSize)
	}
}
