package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Node tags in the slab arena.
const (
	nodeUninitialized = 0
	nodeInner         = 1
	nodeLeaf          = 2
	nodeFree          = 3
	nodeLastFree      = 4
)

const (
	slabHeadSize   = 5 + 8 // "serum" tag + account flags
	slabHeaderSize = 32
	slabNodeSize   = 72
)

type slabHeader struct {
	BumpIndex    uint32
	Padding1     [4]byte
	FreeListLen  uint32
	Padding2     [4]byte
	FreeListHead uint32
	Root         uint32
	LeafCount    uint32
	Padding3     [4]byte
}

type slabNode struct {
	Tag  uint32
	Data [68]byte
}

type leafNode struct {
	OwnerSlot     uint8
	FeeTier       uint8
	Padding       [2]byte
	KeyLower      uint64
	KeyUpper      uint64
	Owner         solana.PublicKey
	Quantity      uint64
	ClientOrderID uint64
}

type innerNode struct {
	PrefixLen uint32
	KeyLower  uint64
	KeyUpper  uint64
	Children  [2]uint32
}

// Order is a resting order recovered from one side of the book. The
// 128-bit order key packs the price in its upper 64 bits and a sequence
// number in the lower 64.
type Order struct {
	OrderIDLower  uint64           `json:"orderIdLower"`
	OrderIDUpper  uint64           `json:"orderIdUpper"`
	Price         uint64           `json:"price"`
	Quantity      uint64           `json:"quantity"`
	Owner         solana.PublicKey `json:"owner"`
	OwnerSlot     uint8            `json:"ownerSlot"`
	FeeTier       uint8            `json:"feeTier"`
	ClientOrderID uint64           `json:"clientOrderId"`
}

// Orderbook is one decoded side of the book, orders in key order.
type Orderbook struct {
	AccountFlags uint64  `json:"accountFlags"`
	Orders       []Order `json:"orders"`
}

type SlabCoder struct{}

func NewSlabCoder() *SlabCoder {
	return &SlabCoder{}
}

// DecodeOrderbook decodes a bids or asks account. Orders are collected
// by an in-order walk of the critbit tree, so they come out sorted by
// the full 128-bit key.
func (coder *SlabCoder) DecodeOrderbook(data []byte) (Orderbook, error) {
	var book Orderbook

	if len(data) < slabHeadSize+slabHeaderSize {
		return book, fmt.Errorf("orderbook account too short: %d bytes", len(data))
	}

	if string(data[:5]) != "serum" {
		return book, fmt.Errorf("account is not a serum orderbook: bad head tag %q", data[:5])
	}

	book.AccountFlags = binary.LittleEndian.Uint64(data[5:13])

	var header slabHeader
	buf := bytes.NewReader(data[slabHeadSize:])
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return book, fmt.Errorf("failed to decode slab header: %w", err)
	}

	// The header comes from untrusted account bytes. Bound the node
	// count by the arena actually present before allocating.
	arena := data[slabHeadSize+slabHeaderSize:]
	if int64(header.BumpIndex)*slabNodeSize > int64(len(arena)) {
		return book, fmt.Errorf("slab header claims %d nodes but arena holds only %d bytes", header.BumpIndex, len(arena))
	}

	nodes := make([]slabNode, header.BumpIndex)
	for i := uint32(0); i < header.BumpIndex; i++ {
		offset := int(i) * slabNodeSize
		nodes[i].Tag = binary.LittleEndian.Uint32(arena[offset : offset+4])
		copy(nodes[i].Data[:], arena[offset+4:offset+slabNodeSize])
	}

	if header.LeafCount == 0 {
		return book, nil
	}

	orders := make([]Order, 0, header.LeafCount)
	if err := walkSlab(nodes, header.Root, &orders); err != nil {
		return book, err
	}

	book.Orders = orders
	return book, nil
}

// walkSlab visits leaves in-order starting from root. Iterative with an
// explicit stack; a well-formed tree visits each node at most once, so
// the walk errors out if the visit count exceeds the arena size rather
// than looping forever on a node that lists itself as a child.
func walkSlab(nodes []slabNode, root uint32, orders *[]Order) error {
	stack := []uint32{root}
	visits := 0

	for len(stack) > 0 {
		visits++
		if visits > len(nodes) {
			return fmt.Errorf("slab walk exceeded %d nodes, tree contains a cycle", len(nodes))
		}

		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if int(index) >= len(nodes) {
			return fmt.Errorf("slab node index %d out of range", index)
		}

		node := nodes[index]
		switch node.Tag {
		case nodeLeaf:
			var leaf leafNode
			if err := binary.Read(bytes.NewReader(node.Data[:]), binary.LittleEndian, &leaf); err != nil {
				return fmt.Errorf("failed to decode leaf node: %w", err)
			}
			*orders = append(*orders, Order{
				OrderIDLower:  leaf.KeyLower,
				OrderIDUpper:  leaf.KeyUpper,
				Price:         leaf.KeyUpper,
				Quantity:      leaf.Quantity,
				Owner:         leaf.Owner,
				OwnerSlot:     leaf.OwnerSlot,
				FeeTier:       leaf.FeeTier,
				ClientOrderID: leaf.ClientOrderID,
			})
		case nodeInner:
			var inner innerNode
			if err := binary.Read(bytes.NewReader(node.Data[:]), binary.LittleEndian, &inner); err != nil {
				return fmt.Errorf("failed to decode inner node: %w", err)
			}
			// Push right first so the left child is visited first.
			stack = append(stack, inner.Children[1], inner.Children[0])
		case nodeUninitialized, nodeFree, nodeLastFree:
			return fmt.Errorf("slab walk reached non-tree node with tag %d", node.Tag)
		default:
			return fmt.Errorf("unknown slab node tag %d", node.Tag)
		}
	}

	return nil
}
