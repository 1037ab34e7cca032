// Package anchor implements the batch anchor: buffer
// evidence bytes, close a batch on the hour boundary, build a Merkle tree,
// submit the root to an external chain, and durably record the commitment
// with its full inner-node DAG.
package anchor

import (
	"fmt"

	"lukechampine.com/blake3"
)

// rootSize is the digest width used throughout: BLAKE3-256.
const rootSize = 32

// Tree is a built Merkle tree's public output: the root and the
// concatenation of every level's node hashes, leaves first.
type Tree struct {
	Root      [rootSize]byte
	DAG       []byte // len(DAG) % 32 == 0, ends with Root
	LeafCount int
}

// hashLeaf and hashPair both use BLAKE3-256 as the leaf/node hash.
func hashLeaf(b []byte) [rootSize]byte {
	return blake3.Sum256(b)
}

func hashPair(left, right [rootSize]byte) [rootSize]byte {
	buf := make([]byte, 0, rootSize*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return blake3.Sum256(buf)
}

// Build constructs the Merkle tree over batch in ingest order. An odd
// trailing node at any level is carried up to the
// next level unchanged — no duplication, the deliberate departure from the
// usual Bitcoin-style rule. An empty batch yields the
// all-zero root and an empty DAG.
func Build(batch [][]byte) Tree {
	if len(batch) == 0 {
		return Tree{}
	}

	level := make([][rootSize]byte, len(batch))
	for i, b := range batch {
		level[i] = hashLeaf(b)
	}

	var dag []byte
	appendLevel := func(lvl [][rootSize]byte) {
		for _, node := range lvl {
			dag = append(dag, node[:]...)
		}
	}
	appendLevel(level)

	for len(level) > 1 {
		next := make([][rootSize]byte, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
		appendLevel(level)
	}

	return Tree{Root: level[0], DAG: dag, LeafCount: len(batch)}
}

// ProofStep is one level of an inclusion proof: either a sibling hash to
// combine the running accumulator with, or a pass-through marker for the
// odd trailing node Build carries up unchanged (no pairing at that level).
type ProofStep struct {
	Sibling     [rootSize]byte
	HasSibling  bool
	SiblingLeft bool // true: next = H(Sibling || acc); false: next = H(acc || Sibling)
}

// levelSizes returns the Merkle level sizes Build produces for leafCount
// leaves, leaves first, ending at the singleton root — the same halving
// recurrence Build's tree-growing loop follows.
func levelSizes(leafCount int) []int {
	if leafCount == 0 {
		return nil
	}
	sizes := []int{leafCount}
	for sizes[len(sizes)-1] > 1 {
		sizes = append(sizes, (sizes[len(sizes)-1]+1)/2)
	}
	return sizes
}

// InclusionProof extracts leafIndex's sibling path out of a dag blob built
// by Build over leafCount leaves, needing only the stored dag — not the
// original batch — to reconstruct it (spec.md §8's Merkle
// reconstructability property).
func InclusionProof(dag []byte, leafCount, leafIndex int) ([]ProofStep, error) {
	if leafIndex < 0 || leafIndex >= leafCount {
		return nil, fmt.Errorf("anchor: leaf index %d out of range for %d leaves", leafIndex, leafCount)
	}
	if len(dag)%rootSize != 0 {
		return nil, fmt.Errorf("anchor: dag length %d is not a multiple of %d", len(dag), rootSize)
	}

	sizes := levelSizes(leafCount)
	offsets := make([]int, len(sizes))
	total := 0
	for i, sz := range sizes {
		offsets[i] = total
		total += sz
	}
	if total*rootSize != len(dag) {
		return nil, fmt.Errorf("anchor: dag does not match %d leaves", leafCount)
	}

	nodeAt := func(level, idx int) [rootSize]byte {
		var n [rootSize]byte
		off := (offsets[level] + idx) * rootSize
		copy(n[:], dag[off:off+rootSize])
		return n
	}

	proof := make([]ProofStep, 0, len(sizes)-1)
	idx := leafIndex
	for level := 0; level < len(sizes)-1; level++ {
		sz := sizes[level]
		switch {
		case idx == sz-1 && sz%2 == 1:
			proof = append(proof, ProofStep{HasSibling: false})
			idx = sizes[level+1] - 1
		case idx%2 == 0:
			proof = append(proof, ProofStep{Sibling: nodeAt(level, idx+1), HasSibling: true, SiblingLeft: false})
			idx /= 2
		default:
			proof = append(proof, ProofStep{Sibling: nodeAt(level, idx-1), HasSibling: true, SiblingLeft: true})
			idx /= 2
		}
	}
	return proof, nil
}

// VerifyInclusion recomputes the root by folding leaf through proof and
// reports whether it matches root.
func VerifyInclusion(leaf [rootSize]byte, proof []ProofStep, root [rootSize]byte) bool {
	acc := leaf
	for _, step := range proof {
		if !step.HasSibling {
			continue
		}
		if step.SiblingLeft {
			acc = hashPair(step.Sibling, acc)
		} else {
			acc = hashPair(acc, step.Sibling)
		}
	}
	return acc == root
}
