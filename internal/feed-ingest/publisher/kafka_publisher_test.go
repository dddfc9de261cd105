package publisher

import (
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

func headerMap(headers []kafka.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestEnvelopeHeaders(t *testing.T) {
	profileID := int64(7)

	tests := []struct {
		name string
		env  feed.Envelope
		want map[string]string
	}{
		{
			name: "broadcast carrega só o sport urn",
			env:  feed.Envelope{SportURN: "sr:sport:1"},
			want: map[string]string{feed.HeaderSportURN: "sr:sport:1"},
		},
		{
			name: "tenant com node",
			env:  feed.Envelope{SportURN: "sr:sport:1", TenantID: "t1", NodeID: "n2"},
			want: map[string]string{
				feed.HeaderSportURN: "sr:sport:1",
				feed.HeaderTenantID: "t1",
				feed.HeaderNodeID:   "n2",
			},
		},
		{
			name: "tenant sem node deixa o default pro consumidor",
			env:  feed.Envelope{SportURN: "sr:sport:1", TenantID: "t1"},
			want: map[string]string{
				feed.HeaderSportURN: "sr:sport:1",
				feed.HeaderTenantID: "t1",
			},
		},
		{
			name: "node sem tenant é ignorado",
			env:  feed.Envelope{SportURN: "sr:sport:1", NodeID: "n2"},
			want: map[string]string{feed.HeaderSportURN: "sr:sport:1"},
		},
		{
			name: "perfil",
			env:  feed.Envelope{SportURN: "sr:sport:1", ProfileID: &profileID},
			want: map[string]string{
				feed.HeaderSportURN:  "sr:sport:1",
				feed.HeaderProfileID: "7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := headerMap(envelopeHeaders(tt.env))
			if len(got) != len(tt.want) {
				t.Fatalf("headers = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
