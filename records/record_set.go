package records

// RecordSet is a loaded artifact: the active and free record
// collections in the order the decoder produced them.
type RecordSet interface {
	Active() []EntryKey
	Free() []EntryKey
	Get(key EntryKey) (*RawFileRecord, bool)
}

// Collection is the in memory RecordSet.
type Collection struct {
	active []EntryKey
	free   []EntryKey
	lookup map[EntryKey]*RawFileRecord
}

func NewCollection() *Collection {
	return &Collection{
		lookup: make(map[EntryKey]*RawFileRecord),
	}
}

// Add routes the record to the active or free list. A second record
// with the same key replaces the first.
func (self *Collection) Add(record *RawFileRecord) {
	key := record.Key()
	_, pres := self.lookup[key]
	self.lookup[key] = record
	if pres {
		return
	}

	if record.InUse {
		self.active = append(self.active, key)
	} else {
		self.free = append(self.free, key)
	}
}

func (self *Collection) Active() []EntryKey {
	return self.active
}

func (self *Collection) Free() []EntryKey {
	return self.free
}

func (self *Collection) Get(key EntryKey) (*RawFileRecord, bool) {
	record, pres := self.lookup[key]
	return record, pres
}

func (self *Collection) Len() int {
	return len(self.lookup)
}

// Each visits active records first, then free ones.
func (self *Collection) Each(cb func(record *RawFileRecord) error) error {
	return EachRecord(self, cb)
}

func EachRecord(set RecordSet, cb func(record *RawFileRecord) error) error {
	for _, keys := range [][]EntryKey{set.Active(), set.Free()} {
		for _, key := range keys {
			record, pres := set.Get(key)
			if !pres {
				continue
			}
			err := cb(record)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
