package coder

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
)

func serumTag() [5]byte {
	var tag [5]byte
	copy(tag[:], "serum")
	return tag
}

func TestDecodeMarket(t *testing.T) {
	state := MarketStateLayoutV3{
		SerumTag:     serumTag(),
		AccountFlags: 3,
		OwnAddress:   solana.NewWallet().PublicKey(),
		BaseMint:     solana.NewWallet().PublicKey(),
		QuoteMint:    solana.NewWallet().PublicKey(),
		EventQueue:   solana.NewWallet().PublicKey(),
		Bids:         solana.NewWallet().PublicKey(),
		Asks:         solana.NewWallet().PublicKey(),
		BaseLotSize:  100,
		QuoteLotSize: 10,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &state); err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	if buf.Len() != marketStateV3Size {
		t.Fatalf("fixture is %d bytes, want %d", buf.Len(), marketStateV3Size)
	}

	decoded, err := NewMarketCoder().DecodeMarket(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeMarket failed: %v", err)
	}

	if !decoded.OwnAddress.Equals(state.OwnAddress) {
		t.Errorf("OwnAddress mismatch: got %s", decoded.OwnAddress)
	}
	if !decoded.Bids.Equals(state.Bids) || !decoded.Asks.Equals(state.Asks) {
		t.Error("orderbook addresses did not survive decoding")
	}
	if decoded.BaseLotSize != 100 || decoded.QuoteLotSize != 10 {
		t.Error("lot sizes did not survive decoding")
	}
}

func TestDecodeMarketRejectsBadTag(t *testing.T) {
	data := make([]byte, marketStateV3Size)
	copy(data, "notse")

	if _, err := NewMarketCoder().DecodeMarket(data); err == nil {
		t.Fatal("DecodeMarket accepted an account without the serum tag")
	}
}

func TestDecodeMarketRejectsShortAccount(t *testing.T) {
	if _, err := NewMarketCoder().DecodeMarket(make([]byte, 32)); err == nil {
		t.Fatal("DecodeMarket accepted a truncated account")
	}
}

func TestDecodeMint(t *testing.T) {
	mint := Mint{
		Supply:        1_000_000,
		Decimals:      6,
		IsInitialized: true,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &mint); err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	if buf.Len() != mintSize {
		t.Fatalf("fixture is %d bytes, want %d", buf.Len(), mintSize)
	}

	decoded, err := DecodeMint(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeMint failed: %v", err)
	}
	if decoded.Decimals != 6 {
		t.Errorf("Decimals = %d, want 6", decoded.Decimals)
	}
}

func TestDecodeTokenAccount(t *testing.T) {
	account := TokenAccount{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  solana.NewWallet().PublicKey(),
		Amount: 123_456_789,
		State:  1,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &account); err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	if buf.Len() != tokenAccountSize {
		t.Fatalf("fixture is %d bytes, want %d", buf.Len(), tokenAccountSize)
	}

	decoded, err := DecodeTokenAccount(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTokenAccount failed: %v", err)
	}
	if decoded.Amount != 123_456_789 {
		t.Errorf("Amount = %d, want 123456789", decoded.Amount)
	}
	if !decoded.Owner.Equals(account.Owner) {
		t.Error("Owner did not survive decoding")
	}
}

func buildSlabFixture(t *testing.T, header slabHeader, nodes []slabNode) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("serum")
	binary.Write(&buf, binary.LittleEndian, uint64(1)) // account flags
	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		t.Fatalf("failed to write slab header: %v", err)
	}
	for _, node := range nodes {
		if err := binary.Write(&buf, binary.LittleEndian, &node); err != nil {
			t.Fatalf("failed to write slab node: %v", err)
		}
	}

	return buf.Bytes()
}

func leafFixture(t *testing.T, price, seq, quantity, clientID uint64, owner solana.PublicKey) slabNode {
	t.Helper()

	leaf := leafNode{
		OwnerSlot:     1,
		FeeTier:       2,
		KeyLower:      seq,
		KeyUpper:      price,
		Owner:         owner,
		Quantity:      quantity,
		ClientOrderID: clientID,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &leaf); err != nil {
		t.Fatalf("failed to write leaf: %v", err)
	}

	node := slabNode{Tag: nodeLeaf}
	copy(node.Data[:], buf.Bytes())
	return node
}

func innerFixture(t *testing.T, left, right uint32) slabNode {
	t.Helper()

	inner := innerNode{
		PrefixLen: 32,
		Children:  [2]uint32{left, right},
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &inner); err != nil {
		t.Fatalf("failed to write inner node: %v", err)
	}

	node := slabNode{Tag: nodeInner}
	copy(node.Data[:], buf.Bytes())
	return node
}

func TestDecodeOrderbook(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	nodes := []slabNode{
		innerFixture(t, 1, 2),
		leafFixture(t, 100, 7, 50, 11, owner),
		leafFixture(t, 200, 8, 75, 22, owner),
	}

	header := slabHeader{
		BumpIndex: 3,
		Root:      0,
		LeafCount: 2,
	}

	book, err := NewSlabCoder().DecodeOrderbook(buildSlabFixture(t, header, nodes))
	if err != nil {
		t.Fatalf("DecodeOrderbook failed: %v", err)
	}

	if len(book.Orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(book.Orders))
	}

	first, second := book.Orders[0], book.Orders[1]
	if first.Price != 100 || second.Price != 200 {
		t.Errorf("orders out of key order: prices %d, %d", first.Price, second.Price)
	}
	if first.Quantity != 50 || first.ClientOrderID != 11 {
		t.Errorf("leaf fields did not survive: %+v", first)
	}
	if !first.Owner.Equals(owner) {
		t.Error("owner did not survive decoding")
	}
}

func TestDecodeOrderbookEmpty(t *testing.T) {
	header := slabHeader{BumpIndex: 0, LeafCount: 0}

	book, err := NewSlabCoder().DecodeOrderbook(buildSlabFixture(t, header, nil))
	if err != nil {
		t.Fatalf("DecodeOrderbook failed on empty slab: %v", err)
	}
	if len(book.Orders) != 0 {
		t.Fatalf("got %d orders from an empty slab", len(book.Orders))
	}
}

func TestDecodeOrderbookOverstatedBumpIndex(t *testing.T) {
	// A hostile header can claim billions of nodes in a tiny account.
	// The arena bound has to reject it before anything is allocated.
	header := slabHeader{BumpIndex: 4_000_000_000, Root: 0, LeafCount: 1}

	_, err := NewSlabCoder().DecodeOrderbook(buildSlabFixture(t, header, nil))
	if err == nil {
		t.Fatal("expected an error for a header overstating the node count")
	}
}

func TestDecodeOrderbookCyclicSlab(t *testing.T) {
	// A node listing itself as both children must terminate the walk.
	nodes := []slabNode{innerFixture(t, 0, 0)}
	header := slabHeader{BumpIndex: 1, Root: 0, LeafCount: 1}

	done := make(chan error, 1)
	go func() {
		_, err := NewSlabCoder().DecodeOrderbook(buildSlabFixture(t, header, nodes))
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error for a cyclic slab")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("DecodeOrderbook did not terminate on a cyclic slab")
	}
}

func TestDecodeEventQueueWrapsRing(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	makeEvent := func(clientID uint64) Event {
		return Event{
			Flags:             EventFlagFill | EventFlagBid,
			NativeQtyReleased: 10,
			NativeQtyPaid:     20,
			Owner:             owner,
			ClientOrderID:     clientID,
		}
	}

	header := eventQueueHeader{
		SerumTag:     serumTag(),
		AccountFlags: 1,
		Head:         3,
		Count:        2,
		SeqNum:       9,
	}

	// Capacity 4; pending events live at slots 3 and 0.
	ring := make([]Event, 4)
	ring[3] = makeEvent(111)
	ring[0] = makeEvent(222)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i := range ring {
		if err := binary.Write(&buf, binary.LittleEndian, &ring[i]); err != nil {
			t.Fatalf("failed to write event: %v", err)
		}
	}

	queue, err := NewEventQueueCoder().DecodeEventQueue(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeEventQueue failed: %v", err)
	}

	if queue.SeqNum != 9 {
		t.Errorf("SeqNum = %d, want 9", queue.SeqNum)
	}
	if len(queue.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(queue.Events))
	}
	if queue.Events[0].ClientOrderID != 111 || queue.Events[1].ClientOrderID != 222 {
		t.Errorf("ring order wrong: got %d, %d", queue.Events[0].ClientOrderID, queue.Events[1].ClientOrderID)
	}
	if !queue.Events[0].Fill() || !queue.Events[0].Bid() {
		t.Error("event flags did not survive decoding")
	}
}
