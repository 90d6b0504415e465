package explorer

import (
	"encoding/json"
	"testing"

	"autotask-relay/internal/domain/model"
)

func source(hash string, chainID string) *model.Source {
	return &model.Source{TransactionHash: hash, Block: &model.Block{ChainID: json.Number(chainID)}}
}

func TestResolve(t *testing.T) {
	r := New(map[string]string{"100": "https://gnosisscan.io/"})

	tests := []struct {
		name    string
		secrets map[string]string
		source  *model.Source
		want    string
		wantOK  bool
	}{
		{name: "mainnet", source: source("0xabc", "1"), want: "https://etherscan.io/tx/0xabc", wantOK: true},
		{name: "configured-chain", source: source("0xabc", "100"), want: "https://gnosisscan.io/tx/0xabc", wantOK: true},
		{
			name:    "secret-override",
			secrets: map[string]string{"explorer_1": "https://eth.blockscout.com"},
			source:  source("0xabc", "1"),
			want:    "https://eth.blockscout.com/tx/0xabc",
			wantOK:  true,
		},
		{name: "unknown-chain", source: source("0xabc", "999"), wantOK: false},
		{name: "no-source", source: nil, wantOK: false},
		{name: "no-hash", source: source("", "1"), wantOK: false},
		{name: "no-block", source: &model.Source{TransactionHash: "0xabc"}, wantOK: false},
		{name: "empty-chain", source: source("0xabc", ""), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.secrets, tt.source)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Resolve() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
