package crapstable

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrRandomnessNotConfigured = errors.New("randomness: fulfillment callback not registered")

/*
RandomnessBackend is the two-phase randomness collaborator. RequestRoll
returns a request handle immediately; the backend later delivers two raw
unsigned values through the registered fulfillment callback. The engine keys
its pending-request table on the handle, so stale or duplicate fulfillments
are detected there, not here.
*/
type RandomnessBackend interface {
	OnRollFulfilled(fn func(requestID string, rawValues [2]uint64))
	RequestRoll(seriesID string) (string, error)
}

// DieValue maps one raw unsigned value onto a die face.
func DieValue(raw uint64) int {
	return int(raw%6) + 1
}

/*
NativeRandomnessBackend fulfills requests from a local PRNG, delivering each
result asynchronously on its own goroutine the way an external source would.
*/
type NativeRandomnessBackend struct {
	mu              sync.Mutex
	rng             *rand.Rand
	onRollFulfilled func(requestID string, rawValues [2]uint64)
}

func NewNativeRandomnessBackend() *NativeRandomnessBackend {
	return &NativeRandomnessBackend{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (nrb *NativeRandomnessBackend) OnRollFulfilled(fn func(requestID string, rawValues [2]uint64)) {
	nrb.mu.Lock()
	defer nrb.mu.Unlock()
	nrb.onRollFulfilled = fn
}

func (nrb *NativeRandomnessBackend) RequestRoll(seriesID string) (string, error) {
	nrb.mu.Lock()
	defer nrb.mu.Unlock()

	if nrb.onRollFulfilled == nil {
		return "", ErrRandomnessNotConfigured
	}

	requestID := uuid.New().String()
	rawValues := [2]uint64{nrb.rng.Uint64(), nrb.rng.Uint64()}
	fn := nrb.onRollFulfilled

	go fn(requestID, rawValues)

	return requestID, nil
}
