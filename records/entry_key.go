package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("Entry not found")
	ErrBadAddress = errors.New("Incorrect format for entry address: e.g. 624, 624-5 or 0x270-0x5")
)

// EntryKey packs an MFT entry number and its sequence number into a
// single integer: entry << 16 | sequence.
type EntryKey uint64

func NewEntryKey(entry uint32, sequence uint16) EntryKey {
	return EntryKey(uint64(entry)<<16 | uint64(sequence))
}

func (self EntryKey) Entry() uint32 {
	return uint32(self >> 16)
}

func (self EntryKey) Sequence() uint16 {
	return uint16(self & 0xFFFF)
}

// String gives the EEEEEEEE-SSSSSSSS form other tools expect.
func (self EntryKey) String() string {
	return fmt.Sprintf("%08X-%08X", self.Entry(), self.Sequence())
}

// AmbiguousAddressError is returned when an address without a
// sequence number matches more than one record.
type AmbiguousAddressError struct {
	Address    string
	Candidates []EntryKey
}

func (self *AmbiguousAddressError) Error() string {
	candidates := make([]string, 0, len(self.Candidates))
	for _, c := range self.Candidates {
		candidates = append(candidates, c.String())
	}
	return fmt.Sprintf("Address %v is ambiguous, specify a sequence number: %v",
		self.Address, strings.Join(candidates, ", "))
}

type Address struct {
	Entry       uint32
	Sequence    uint16
	HasSequence bool
}

// ParseAddress accepts "Entry" or "Entry-Sequence". Both segments are
// either decimal or 0x prefixed hex.
func ParseAddress(address string) (Address, error) {
	components := strings.Split(strings.TrimSpace(address), "-")
	if len(components) < 1 || len(components) > 2 {
		return Address{}, ErrBadAddress
	}

	is_hex := strings.HasPrefix(strings.ToLower(components[0]), "0x")
	values := make([]uint64, 0, 2)
	for _, component := range components {
		lower := strings.ToLower(component)
		if strings.HasPrefix(lower, "0x") != is_hex {
			return Address{}, ErrBadAddress
		}

		base := 10
		if is_hex {
			base = 16
			lower = lower[2:]
		}

		x, err := strconv.ParseUint(lower, base, 32)
		if err != nil {
			return Address{}, ErrBadAddress
		}
		values = append(values, x)
	}

	result := Address{Entry: uint32(values[0])}
	if len(values) == 2 {
		if values[1] > 0xFFFF {
			return Address{}, ErrBadAddress
		}
		result.Sequence = uint16(values[1])
		result.HasSequence = true
	}
	return result, nil
}

// Resolve finds the record an address refers to. Active records are
// searched before free ones when no sequence number is given.
func Resolve(set RecordSet, address string) (EntryKey, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return 0, err
	}

	if addr.HasSequence {
		key := NewEntryKey(addr.Entry, addr.Sequence)
		_, pres := set.Get(key)
		if !pres {
			return 0, errors.Wrapf(ErrNotFound, "Address %v", address)
		}
		return key, nil
	}

	for _, keys := range [][]EntryKey{set.Active(), set.Free()} {
		candidates := []EntryKey{}
		for _, key := range keys {
			if key.Entry() == addr.Entry {
				candidates = append(candidates, key)
			}
		}

		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], nil
		default:
			return 0, &AmbiguousAddressError{
				Address:    address,
				Candidates: candidates,
			}
		}
	}

	return 0, errors.Wrapf(ErrNotFound, "Address %v", address)
}
