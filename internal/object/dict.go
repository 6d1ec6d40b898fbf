package object

import (
	"modernc.org/mathutil"

	"vellum/internal/memory"
)

// dictEntry is one slot of the insertion-ordered entry array. A nil Key
// marks a tombstoned (deleted) entry.
type dictEntry struct {
	Key  Value
	Val  Value
	Hash uint64
}

// Dict is an open-addressed hash table with a separate bucket array of
// indices into an insertion-ordered entry array. Max load factor 0.3,
// rehash target 0.15; deletions tombstone both the entry (nil key) and
// bucket; probing is linear bi = (bi0 + t) mod n; bucket count is always
// prime (§3, §4.5).
type Dict struct {
	memory.Refcounted
	buckets []int32 // index into entries, or emptyBucket/tombstoneBucket
	entries []dictEntry
	live    int // entries with a non-nil key
}

const (
	emptyBucket     int32 = -1
	tombstoneBucket int32 = -2
)

func (d *Dict) header() *memory.Refcounted { return &d.Refcounted }
func (d *Dict) TypeOf() *Type              { return DictType }

func NewDict() *Dict {
	d := &Dict{Refcounted: memory.NewRefcounted(64)}
	d.initBuckets(7)
	return d
}

func (d *Dict) initBuckets(n int) {
	d.buckets = make([]int32, n)
	for i := range d.buckets {
		d.buckets[i] = emptyBucket
	}
}

func (d *Dict) Len() int { return d.live }

// nextPrime finds the smallest prime >= n using mathutil.ProbablyPrime for
// the primality test, per the §3 "bucket count is always prime" invariant.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !mathutil.ProbablyPrime(uint32(n)) {
		n += 2
	}
	return n
}

// rehash reorganizes the table to bucket count next_prime(ceil(n/0.15)),
// compacting out tombstoned entries while retaining insertion order of
// surviving entries.
func (d *Dict) rehash() {
	newBucketCount := nextPrime(int(float64(d.live)/0.15) + 1)
	newEntries := make([]dictEntry, 0, d.live)
	for _, e := range d.entries {
		if e.Key != nil {
			newEntries = append(newEntries, e)
		}
	}
	d.entries = newEntries
	d.initBuckets(newBucketCount)
	for i, e := range d.entries {
		d.insertBucket(e.Hash, int32(i))
	}
}

func (d *Dict) insertBucket(hash uint64, entryIdx int32) {
	n := len(d.buckets)
	bi0 := int(hash % uint64(n))
	for t := 0; t < n; t++ {
		bi := (bi0 + t) % n
		if d.buckets[bi] == emptyBucket || d.buckets[bi] == tombstoneBucket {
			d.buckets[bi] = entryIdx
			return
		}
	}
}

func normalizeHash(h uint64) uint64 {
	// hash == 0 is reserved to mean "empty"; rewritten to 1 on insert (§4.5).
	if h == 0 {
		return 1
	}
	return h
}

// probe returns the entry index for key with the given hash, or -1 if
// absent. Terminates on an empty bucket (miss) or a matching hash+key
// (hit); tombstones are skipped.
func (d *Dict) probe(hash uint64, key Value, eq func(Value, Value) bool) int {
	n := len(d.buckets)
	if n == 0 {
		return -1
	}
	bi0 := int(hash % uint64(n))
	for t := 0; t < n; t++ {
		bi := (bi0 + t) % n
		b := d.buckets[bi]
		if b == emptyBucket {
			return -1
		}
		if b == tombstoneBucket {
			continue
		}
		e := &d.entries[b]
		if e.Key != nil && e.Hash == hash && (e.Key == key || eq(e.Key, key)) {
			return int(b)
		}
	}
	return -1
}

func (d *Dict) Get(key Value, hash uint64, eq func(Value, Value) bool) (Value, bool) {
	hash = normalizeHash(hash)
	idx := d.probe(hash, key, eq)
	if idx < 0 {
		return nil, false
	}
	return d.entries[idx].Val, true
}

// Set inserts or overwrites key->val. If the resulting load factor exceeds
// 0.3, the table is rehashed first.
func (d *Dict) Set(key Value, val Value, hash uint64, eq func(Value, Value) bool) {
	hash = normalizeHash(hash)
	if idx := d.probe(hash, key, eq); idx >= 0 {
		d.entries[idx].Val = val
		return
	}
	if float64(d.live+1)/float64(len(d.buckets)) > 0.3 {
		d.rehash()
	}
	d.entries = append(d.entries, dictEntry{Key: key, Val: val, Hash: hash})
	d.live++
	d.insertBucket(hash, int32(len(d.entries)-1))
}

// Del tombstones key's entry and bucket. Per the §8 testable property,
// after Del(k); Set(k, v), iteration order of other keys is preserved with
// k appearing last — a direct consequence of tombstoning rather than
// compacting eagerly, combined with Set always appending a fresh entry.
func (d *Dict) Del(key Value, hash uint64, eq func(Value, Value) bool) bool {
	hash = normalizeHash(hash)
	n := len(d.buckets)
	if n == 0 {
		return false
	}
	bi0 := int(hash % uint64(n))
	for t := 0; t < n; t++ {
		bi := (bi0 + t) % n
		b := d.buckets[bi]
		if b == emptyBucket {
			return false
		}
		if b == tombstoneBucket {
			continue
		}
		e := &d.entries[b]
		if e.Key != nil && e.Hash == hash && (e.Key == key || eq(e.Key, key)) {
			e.Key = nil
			e.Val = nil
			d.buckets[bi] = tombstoneBucket
			d.live--
			return true
		}
	}
	return false
}

// Iterate visits live entries in insertion order.
func (d *Dict) Iterate(fn func(key, val Value)) {
	for _, e := range d.entries {
		if e.Key != nil {
			fn(e.Key, e.Val)
		}
	}
}

// --- string-keyed convenience used by attribute dictionaries ---

func stringEq(a, b Value) bool {
	as, aok := a.(*String)
	bs, bok := b.(*String)
	return aok && bok && as.Equal(bs)
}

func (d *Dict) GetStr(key string) (Value, bool) {
	k := NewString(key)
	return d.Get(k, k.Hash(), stringEq)
}

func (d *Dict) SetStr(key string, val Value) {
	k := NewString(key)
	d.Set(k, val, k.Hash(), stringEq)
}

func (d *Dict) DelStr(key string) bool {
	k := NewString(key)
	return d.Del(k, k.Hash(), stringEq)
}
