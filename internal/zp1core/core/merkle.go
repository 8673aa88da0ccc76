package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the length in bytes of every Merkle node digest.
const DigestSize = 32

// Digest is a 32-byte Merkle node value.
type Digest [DigestSize]byte

// String renders a digest as lowercase hex, for logs and error messages.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// merkleDomainSep is the domain separator literal identifying this
// commitment scheme, absorbed into every leaf and internal-node hash so
// that collisions cannot be carried in from another protocol.
const merkleDomainSep = "zp1-merkle-v1"

// hashLeaf compresses a single row (a leaf) into a digest, keyed with the
// system domain separator.
func hashLeaf(row []byte) Digest {
	h := sha3.New256()
	h.Write([]byte(merkleDomainSep))
	h.Write([]byte{0x00}) // leaf tag
	h.Write(row)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// hashNode compresses two children at the given tree height into their
// parent digest. Height-tagging prevents a leaf or a node from one level
// being replayed as if it were a node at another level (second-preimage
// across levels).
func hashNode(left, right Digest, height int) Digest {
	h := sha3.New256()
	h.Write([]byte(merkleDomainSep))
	h.Write([]byte{0x01}) // internal-node tag
	var heightBuf [4]byte
	binary.LittleEndian.PutUint32(heightBuf[:], uint32(height))
	h.Write(heightBuf[:])
	h.Write(left[:])
	h.Write(right[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// MerkleTree is a vector commitment to the rows of a column-major
// evaluation matrix. Each row is hashed to a leaf digest; internal nodes
// are the height-tagged compression of their two children. The tree is
// built over a power-of-two number of leaves.
type MerkleTree struct {
	levels [][]Digest // levels[0] is the leaf level, levels[len-1] is {root}
}

// CommitRows builds a MerkleTree over the given rows and returns the tree
// together with its root digest. len(rows) must be a power of two.
func CommitRows(rows [][]byte) (*MerkleTree, Digest, error) {
	n := len(rows)
	if n == 0 || n&(n-1) != 0 {
		return nil, Digest{}, fmt.Errorf("core: merkle commit: %w", ErrBadSize)
	}

	leaves := make([]Digest, n)
	for i, row := range rows {
		leaves[i] = hashLeaf(row)
	}

	levels := [][]Digest{leaves}
	height := 0
	cur := leaves
	for len(cur) > 1 {
		next := make([]Digest, len(cur)/2)
		for i := range next {
			next[i] = hashNode(cur[2*i], cur[2*i+1], height)
		}
		levels = append(levels, next)
		cur = next
		height++
	}

	tree := &MerkleTree{levels: levels}
	return tree, tree.Root(), nil
}

// Root returns the tree's root digest.
func (t *MerkleTree) Root() Digest {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// MerklePath is the sequence of sibling digests from a leaf up to the
// root, in bottom-up order.
type MerklePath struct {
	Siblings []Digest
}

// Open produces the authentication path for the leaf at index.
func (t *MerkleTree) Open(index int) (MerklePath, error) {
	n := len(t.levels[0])
	if index < 0 || index >= n {
		return MerklePath{}, fmt.Errorf("core: merkle open: index %d out of range [0,%d)", index, n)
	}
	var path MerklePath
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		siblingIdx := idx ^ 1
		path.Siblings = append(path.Siblings, t.levels[level][siblingIdx])
		idx /= 2
	}
	return path, nil
}

// Verify checks that leaf, opened at index with path, authenticates
// against root. It re-derives the height-tagged node hashes up the path
// and compares the result to root.
func Verify(root Digest, index int, leaf []byte, path MerklePath) bool {
	cur := hashLeaf(leaf)
	idx := index
	for height, sibling := range path.Siblings {
		if idx&1 == 0 {
			cur = hashNode(cur, sibling, height)
		} else {
			cur = hashNode(sibling, cur, height)
		}
		idx /= 2
	}
	return cur == root
}
