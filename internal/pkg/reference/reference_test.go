package reference_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/bridge-pay/bridge-api/internal/pkg/reference"
)

func TestNewFormat(t *testing.T) {
	for _, prefix := range []string{reference.PrefixTransfer, reference.PrefixDeposit, reference.PrefixWithdrawal} {
		ref := reference.New(prefix)
		if !strings.HasPrefix(ref, prefix+"-") {
			t.Fatalf("expected %s- prefix, got %q", prefix, ref)
		}
		hex := strings.TrimPrefix(ref, prefix+"-")
		if len(hex) != 32 {
			t.Fatalf("expected 32 hex chars, got %d in %q", len(hex), ref)
		}
		for _, c := range hex {
			if !strings.ContainsRune("0123456789ABCDEF", c) {
				t.Fatalf("unexpected character %q in %q", c, ref)
			}
		}
	}
}

func TestNewConcurrentUniqueness(t *testing.T) {
	const workers = 50
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, reference.New(reference.PrefixTransfer))
			}
			mu.Lock()
			defer mu.Unlock()
			for _, ref := range local {
				if seen[ref] {
					t.Errorf("duplicate reference: %s", ref)
				}
				seen[ref] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique references, got %d", workers*perWorker, len(seen))
	}
}
