package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Event flag bits.
const (
	EventFlagFill  = 0x1
	EventFlagOut   = 0x2
	EventFlagBid   = 0x4
	EventFlagMaker = 0x8
)

const (
	eventQueueHeaderSize = 37 // "serum" tag + flags + head + count + seqNum
	eventSize            = 88
)

type eventQueueHeader struct {
	SerumTag     [5]byte
	AccountFlags uint64
	Head         uint32
	Padding1     [4]byte
	Count        uint32
	Padding2     [4]byte
	SeqNum       uint32
	Padding3     [4]byte
}

// Event is one entry in a market's event queue ring buffer.
type Event struct {
	Flags             uint8            `json:"flags"`
	OwnerSlot         uint8            `json:"ownerSlot"`
	FeeTier           uint8            `json:"feeTier"`
	Padding           [5]byte          `json:"-"`
	NativeQtyReleased uint64           `json:"nativeQtyReleased"`
	NativeQtyPaid     uint64           `json:"nativeQtyPaid"`
	NativeFeeOrRebate uint64           `json:"nativeFeeOrRebate"`
	OrderIDLower      uint64           `json:"orderIdLower"`
	OrderIDUpper      uint64           `json:"orderIdUpper"`
	Owner             solana.PublicKey `json:"owner"`
	ClientOrderID     uint64           `json:"clientOrderId"`
}

func (e Event) Fill() bool  { return e.Flags&EventFlagFill != 0 }
func (e Event) Out() bool   { return e.Flags&EventFlagOut != 0 }
func (e Event) Bid() bool   { return e.Flags&EventFlagBid != 0 }
func (e Event) Maker() bool { return e.Flags&EventFlagMaker != 0 }

// EventQueue is the decoded queue: pending events from head onward, in
// arrival order.
type EventQueue struct {
	AccountFlags uint64  `json:"accountFlags"`
	SeqNum       uint32  `json:"seqNum"`
	Events       []Event `json:"events"`
}

type EventQueueCoder struct{}

func NewEventQueueCoder() *EventQueueCoder {
	return &EventQueueCoder{}
}

// DecodeEventQueue decodes the ring buffer, returning only the Count
// pending events starting at Head.
func (coder *EventQueueCoder) DecodeEventQueue(data []byte) (EventQueue, error) {
	var queue EventQueue

	if len(data) < eventQueueHeaderSize {
		return queue, fmt.Errorf("event queue account too short: %d bytes", len(data))
	}

	var header eventQueueHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return queue, fmt.Errorf("failed to decode event queue header: %w", err)
	}

	if string(header.SerumTag[:]) != "serum" {
		return queue, fmt.Errorf("account is not a serum event queue: bad head tag %q", header.SerumTag)
	}

	queue.AccountFlags = header.AccountFlags
	queue.SeqNum = header.SeqNum

	ring := data[eventQueueHeaderSize:]
	capacity := len(ring) / eventSize
	if capacity == 0 {
		if header.Count > 0 {
			return queue, fmt.Errorf("event queue reports %d events but holds none", header.Count)
		}
		return queue, nil
	}

	if int(header.Count) > capacity {
		return queue, fmt.Errorf("event queue count %d exceeds capacity %d", header.Count, capacity)
	}

	queue.Events = make([]Event, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		slot := (int(header.Head) + int(i)) % capacity
		offset := slot * eventSize

		var event Event
		if err := binary.Read(bytes.NewReader(ring[offset:offset+eventSize]), binary.LittleEndian, &event); err != nil {
			return queue, fmt.Errorf("failed to decode event at slot %d: %w", slot, err)
		}

		queue.Events = append(queue.Events, event)
	}

	return queue, nil
}
