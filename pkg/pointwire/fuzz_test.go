// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// newFuzzRng creates a seeded rng and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if s, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomCommand builds a random but encodable command
func randomCommand(rng *rand.Rand) Command {
	tags := []uint8{TagSmallInt, TagTempRO, TagTempRW, TagTimestamp}
	tag := tags[rng.Intn(len(tags))]
	index := uint8(rng.Intn(20))

	var raw int64
	switch tag {
	case TagSmallInt:
		raw = int64(rng.Intn(256))
	case TagTempRO, TagTempRW:
		raw = int64(rng.Intn(65536) - 32768)
	case TagTimestamp:
		raw = int64(rng.Uint32())
	}
	return Command{Index: index, Type: tag, Value: Value{Raw: raw}}
}

func TestFuzz_FrameRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	codec := NewDefaultCodec()
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		n := 1 + rng.Intn(8)
		cmds := make([]Command, n)
		for i := range cmds {
			cmds[i] = randomCommand(rng)
		}

		frame, err := codec.EncodeFrame(cmds)
		if err != nil {
			t.Fatalf("round %d: encode error: %v", round, err)
		}

		updates, err := codec.DecodeFrame(frame)
		if err != nil {
			t.Fatalf("round %d: decode error: %v (frame % X)", round, err, frame)
		}
		if len(updates) != n {
			t.Fatalf("round %d: got %d updates, want %d", round, len(updates), n)
		}
		for i, u := range updates {
			if u.Index != cmds[i].Index || u.Type != cmds[i].Type {
				t.Fatalf("round %d update %d: got idx %d type %d, want idx %d type %d",
					round, i, u.Index, u.Type, cmds[i].Index, cmds[i].Type)
			}
			if u.Value.Raw != cmds[i].Value.Raw {
				t.Fatalf("round %d update %d: raw %d, want %d",
					round, i, u.Value.Raw, cmds[i].Value.Raw)
			}
		}
	}
}

func TestFuzz_RandomBytesNeverPanic(t *testing.T) {
	rng := newFuzzRng(t)
	codec := NewDefaultCodec()
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		buf := make([]byte, rng.Intn(64))
		for i := range buf {
			buf[i] = byte(rng.Intn(256))
		}

		// Random input must produce either a clean decode or one of the
		// defined codec errors, never a panic or silent partial apply.
		updates, err := codec.DecodeFrame(buf)
		if err != nil {
			switch {
			case errors.Is(err, ErrMalformedFrame),
				errors.Is(err, ErrTruncatedFrame):
			default:
				t.Fatalf("round %d: unexpected error class: %v", round, err)
			}
			continue
		}
		for _, u := range updates {
			if _, terr := codec.types.Resolve(u.Type); terr != nil && u.Value.Kind != KindOpaque {
				t.Fatalf("round %d: typed update with unknown type %d", round, u.Type)
			}
		}
	}
}
