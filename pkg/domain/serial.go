package domain

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

const serialPrefix = "KON"

// SerialRegistry hands out container serial numbers, one counter per kind.
// A registry is owned by the Factory that draws from it; separate registries
// number independently.
type SerialRegistry struct {
	mu   sync.Mutex
	next map[Kind]int
}

// NewSerialRegistry constructs a registry whose counters all start at 1.
func NewSerialRegistry() *SerialRegistry {
	return &SerialRegistry{next: make(map[Kind]int)}
}

// Next reserves the next serial number for kind.
func (r *SerialRegistry) Next(kind Kind) string {
	r.mu.Lock()
	r.next[kind]++
	n := r.next[kind]
	r.mu.Unlock()
	return fmt.Sprintf("%s-%s-%d", serialPrefix, kind.Code(), n)
}

// Issued reports how many serials have been drawn for kind.
func (r *SerialRegistry) Issued(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next[kind]
}

// KindFromSerial recovers the container kind encoded in a serial number.
func KindFromSerial(serial string) (Kind, bool) {
	parts := strings.Split(serial, "-")
	if len(parts) != 3 || parts[0] != serialPrefix {
		return "", false
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return "", false
	}
	for _, kind := range Kinds() {
		if kind.Code() == parts[1] {
			return kind, true
		}
	}
	return "", false
}
