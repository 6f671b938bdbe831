package filter

import (
	"fmt"
	"reflect"
	"testing"
)

type stock struct {
	symbol string
	name   string
}

func (s stock) SearchFields() []string { return []string{s.symbol, s.name} }

type site struct {
	name     string
	url      string
	category string
}

func (s site) SearchFields() []string { return []string{s.name, s.url} }
func (s site) CategoryKey() string    { return s.category }

var stocks = []stock{
	{"AAPL", "Apple Inc."},
	{"MSFT", "Microsoft Corporation"},
	{"NVDA", "NVIDIA Corporation"},
}

var sites = []site{
	{"CryptoDoubleX", "cryptodoublex.com", "crypto"},
	{"StockProfitNow", "stockprofitnow.net", "stock"},
	{"CoinVault", "coinvault.io", "crypto"},
	{"NFTFastFlip", "nftfastflip.io", "nft"},
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter([]stock{}, "x", All)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	if got := Filter[stock](nil, "", All); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice for nil input, got %#v", got)
	}
}

func TestFilterEmptyTermReturnsEverything(t *testing.T) {
	got := Filter(stocks, "", All)
	if !reflect.DeepEqual(got, stocks) {
		t.Fatalf("expected records unchanged, got %v", got)
	}

	got[0] = stock{"XXX", "mutated"}
	if stocks[0].symbol != "AAPL" {
		t.Fatal("filter result aliases the input slice")
	}
}

func TestFilterTermIgnoresCase(t *testing.T) {
	for _, term := range []string{"AAPL", "aapl", "AaPl"} {
		got := Filter(stocks, term, All)
		if len(got) != 1 || got[0].symbol != "AAPL" {
			t.Fatalf("term %q: expected only AAPL, got %v", term, got)
		}
	}
}

func TestFilterTermMatchesAnyField(t *testing.T) {
	got := Filter(stocks, "corporation", "")
	want := []stock{stocks[1], stocks[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	gotSites := Filter(sites, ".io", All)
	if len(gotSites) != 2 || gotSites[0].name != "CoinVault" || gotSites[1].name != "NFTFastFlip" {
		t.Fatalf("unexpected url match: %v", gotSites)
	}
}

func TestFilterCategoryKeepsOrder(t *testing.T) {
	got := Filter(sites, "", "crypto")
	want := []site{sites[0], sites[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFilterTermAndCategory(t *testing.T) {
	cases := []struct {
		term     string
		category string
		want     int
	}{
		{"double", "crypto", 1},
		{"double", "stock", 0},
		{"", "forex", 0},
		{"", "nft", 1},
		{"zzz", All, 0},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.term, tc.category), func(t *testing.T) {
			got := Filter(sites, tc.term, tc.category)
			if len(got) != tc.want {
				t.Fatalf("expected %d matches, got %v", tc.want, got)
			}
		})
	}
}

func TestFilterUncategorizedRecordsOnlyPassAll(t *testing.T) {
	if got := Filter(stocks, "", "crypto"); len(got) != 0 {
		t.Fatalf("expected no positions for a concrete category, got %v", got)
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	records := []stock{{"SAS", "Σας Capital"}}
	if got := Filter(records, "ΣΑΣ", All); len(got) != 1 {
		t.Fatalf("expected case-folded match, got %v", got)
	}
}
