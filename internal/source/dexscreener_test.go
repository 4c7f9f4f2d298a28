package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NarrativeRadar/pkg/logger"
)

func newDSAdapter(t *testing.T, cfg DexScreenerConfig) *DexScreenerAdapter {
	t.Helper()
	a := NewDexScreenerAdapter(cfg, newTestFetcher(t, "dexscreener"), newRawCache(time.Minute), logger.Nop())
	a.SetSleep(noSleep)
	return a
}

func dsServer(body string, calls *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		fmt.Fprint(w, body)
	}))
}

const dsTwoPairs = `{"pairs":[
	{"baseToken":{"address":"0xWIF","symbol":"WIF","name":"dogwifhat"},
	 "volume":{"h24":400000},"liquidity":{"usd":900000},"priceUsd":"2.5","fdv":2500000000,
	 "chainId":"solana","dexId":"raydium","pairAddress":"0xPAIR1","url":"https://dexscreener.com/solana/p1","pairCreatedAt":1700000000000},
	{"baseToken":{"address":"0xBONK","symbol":"BONK","name":"Bonk"},
	 "volume":{"h24":100000},"liquidity":{"usd":300000},"priceUsd":"0.00002","fdv":1500000000,
	 "chainId":"solana","dexId":"orca","pairAddress":"0xPAIR2","url":"https://dexscreener.com/solana/p2","pairCreatedAt":1700000001000}
]}`

func TestDexScreenerVolumeScoring(t *testing.T) {
	var calls int64
	srv := dsServer(dsTwoPairs, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	got := a.ParentsFor(context.Background(), "dogs", []string{"dog"}, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Label != "dogwifhat" || got[0].Score != 1.0 || got[0].Matches != 100 {
		t.Fatalf("volume leader wrong: %+v", got[0])
	}
	if got[1].Score != 0.25 {
		t.Fatalf("linear normalization wrong: %v", got[1].Score)
	}
	if got[0].Chain != "solana" || got[0].Address != "0xWIF" {
		t.Fatalf("token identity not carried: %+v", got[0])
	}
	if got[0].MarketCap == nil || *got[0].MarketCap != 2500000000 {
		t.Fatalf("fdv must populate market cap: %+v", got[0])
	}
	if len(got[0].Children) != 1 || got[0].Children[0].PairAddress != "0xPAIR1" {
		t.Fatalf("pair evidence missing: %+v", got[0].Children)
	}
}

func TestDexScreenerDedupeFirstWins(t *testing.T) {
	body := `{"pairs":[
		{"baseToken":{"address":"0xWIF","symbol":"WIF","name":"dogwifhat"},
		 "volume":{"h24":100},"chainId":"solana","pairAddress":"0xA"},
		{"baseToken":{"address":"0xWIF","symbol":"WIF","name":"dogwifhat"},
		 "volume":{"h24":900},"chainId":"solana","pairAddress":"0xB"}
	]}`
	var calls int64
	srv := dsServer(body, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL, Dedupe: DedupeFirstWins})
	got := a.ParentsFor(context.Background(), "dogs", []string{"dog"}, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("same token must collapse to one row, got %d", len(got))
	}
	if v := got[0].Children; len(v) != 2 {
		t.Fatalf("loser pair must stay as evidence, got %d children", len(v))
	}
	if got[0].Children[0].PairAddress != "0xA" {
		t.Fatalf("first occurrence must win: %+v", got[0].Children[0])
	}
	if *got[0].Vol24h != 100 {
		t.Fatalf("first-wins keeps the first pair's volume: %v", *got[0].Vol24h)
	}
}

func TestDexScreenerDedupeVolumeWins(t *testing.T) {
	body := `{"pairs":[
		{"baseToken":{"address":"0xWIF","symbol":"WIF","name":"dogwifhat"},
		 "volume":{"h24":100},"chainId":"solana","pairAddress":"0xA"},
		{"baseToken":{"address":"0xWIF","symbol":"WIF","name":"dogwifhat"},
		 "volume":{"h24":900},"chainId":"solana","pairAddress":"0xB"}
	]}`
	var calls int64
	srv := dsServer(body, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL, Dedupe: DedupeVolumeWins})
	got := a.ParentsFor(context.Background(), "dogs", []string{"dog"}, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("same token must collapse to one row, got %d", len(got))
	}
	if *got[0].Vol24h != 900 {
		t.Fatalf("higher-volume pair must win: %v", *got[0].Vol24h)
	}
	if len(got[0].Children) != 2 {
		t.Fatalf("both pairs must remain as evidence, got %d", len(got[0].Children))
	}
}

func TestDexScreenerLiquidityFallback(t *testing.T) {
	body := `{"pairs":[
		{"baseToken":{"address":"0xA","symbol":"AAA","name":"Alpha"},
		 "liquidity":{"usd":500000},"chainId":"base","pairAddress":"0xP1"},
		{"baseToken":{"address":"0xB","symbol":"BBB","name":"Beta"},
		 "liquidity":{"usd":250000},"chainId":"base","pairAddress":"0xP2"}
	]}`
	var calls int64
	srv := dsServer(body, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	got := a.ParentsFor(context.Background(), "letters", []string{"alpha"}, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Score != 1.0 || got[1].Score != 0.5 {
		t.Fatalf("liquidity must drive scoring without volume: %v %v", got[0].Score, got[1].Score)
	}
}

func TestDexScreenerFlatFallback(t *testing.T) {
	body := `{"pairs":[
		{"baseToken":{"address":"0xA","symbol":"AAA","name":"Alpha"},"chainId":"base","pairAddress":"0xP1"}
	]}`
	var calls int64
	srv := dsServer(body, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	got := a.ParentsFor(context.Background(), "letters", []string{"alpha"}, DefaultOptions())
	if len(got) != 1 || got[0].Score != 0.1 || got[0].Matches != 10 {
		t.Fatalf("signal-free rows get the flat score: %+v", got)
	}
}

func TestDexScreenerUnusableRowsDropped(t *testing.T) {
	body := `{"pairs":[
		{"baseToken":{"address":"","symbol":"","name":""},"chainId":"base","pairAddress":""},
		{"baseToken":{"address":"0xA","symbol":"AAA","name":"Alpha"},"chainId":"","pairAddress":"0xP"},
		{"baseToken":{"address":"","symbol":"SYM","name":""},"chainId":"base","pairAddress":"0xP2","volume":{"h24":5}}
	]}`
	var calls int64
	srv := dsServer(body, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	got := a.ParentsFor(context.Background(), "letters", []string{"alpha", "sym"}, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("only the symbol-named row is usable, got %d", len(got))
	}
	if got[0].Label != "SYM" || got[0].Address != "0xP2" {
		t.Fatalf("symbol and pair address must backfill: %+v", got[0])
	}
}

func TestDexScreenerAllErrorsYieldEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	got := a.ParentsFor(context.Background(), "dogs", []string{"dog", "wif"}, DefaultOptions())
	if len(got) != 0 {
		t.Fatalf("dead provider must yield an empty list, got %d", len(got))
	}
}

func TestDexScreenerPacingBetweenTerms(t *testing.T) {
	var calls int64
	srv := dsServer(`{"pairs":[]}`, &calls)
	defer srv.Close()

	var sleeps []time.Duration
	a := NewDexScreenerAdapter(
		DexScreenerConfig{BaseURL: srv.URL, Pacing: 150 * time.Millisecond},
		newTestFetcher(t, "dexscreener"),
		newRawCache(time.Minute),
		logger.Nop(),
	)
	a.SetSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})
	a.ParentsFor(context.Background(), "dogs", []string{"dog", "wif", "bonk"}, DefaultOptions())
	if len(sleeps) != 2 {
		t.Fatalf("pacing applies between terms only, got %d sleeps", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 150*time.Millisecond {
			t.Fatalf("pacing duration: %v", d)
		}
	}
}

func TestDexScreenerMemoization(t *testing.T) {
	var calls int64
	srv := dsServer(dsTwoPairs, &calls)
	defer srv.Close()

	a := newDSAdapter(t, DexScreenerConfig{BaseURL: srv.URL})
	ctx := context.Background()
	a.ParentsFor(ctx, "dogs", []string{"dog"}, DefaultOptions())
	a.ParentsFor(ctx, "dogs", []string{" DOG "}, DefaultOptions())
	if calls != 1 {
		t.Fatalf("equivalent term sets must hit the raw cache, got %d upstream calls", calls)
	}
}
