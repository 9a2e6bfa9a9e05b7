package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
)

func klinesWithCloses(closes ...float64) []*domain.Kline {
	klines := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		klines[i] = &domain.Kline{Close: c}
	}
	return klines
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name    string
		closes  []float64
		period  int
		want    float64
		wantErr bool
	}{
		{name: "full window", closes: []float64{1, 2, 3, 4}, period: 4, want: 2.5},
		{name: "tail of window", closes: []float64{10, 2, 4}, period: 2, want: 3},
		{name: "single point", closes: []float64{7}, period: 1, want: 7},
		{name: "not enough data", closes: []float64{1, 2}, period: 3, wantErr: true},
		{name: "zero period", closes: []float64{1, 2}, period: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SMA(klinesWithCloses(tt.closes...), tt.period)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMeanClose(t *testing.T) {
	got, err := MeanClose(klinesWithCloses(100, 102, 104))
	require.NoError(t, err)
	assert.InDelta(t, 102, got, 1e-9)

	_, err = MeanClose(nil)
	require.Error(t, err)
}
