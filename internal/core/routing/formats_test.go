package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

func TestAllowedFormatsFromConvMatrix(t *testing.T) {
	t.Run("SinkMajor", func(t *testing.T) {
		matrix := []bool{true, false, false, true, true, false}
		src := []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo}
		sink := []types.ConnectionFormat{types.FormatMono, types.FormatAuto, types.FormatStereo}

		outSrc, outSink, ok := AllowedFormatsFromConvMatrix(matrix, src, sink)
		assert.True(t, ok)
		assert.Equal(t, []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo, types.FormatAnalog}, outSrc)
		assert.Equal(t, []types.ConnectionFormat{types.FormatMono, types.FormatAuto, types.FormatStereo}, outSink)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		outSrc, outSink, ok := AllowedFormatsFromConvMatrix(
			[]bool{true, false, true},
			[]types.ConnectionFormat{types.FormatAnalog, types.FormatStereo},
			[]types.ConnectionFormat{types.FormatMono, types.FormatAuto},
		)
		assert.False(t, ok)
		assert.Nil(t, outSrc)
		assert.Nil(t, outSink)
	})

	t.Run("NothingAllowed", func(t *testing.T) {
		outSrc, outSink, ok := AllowedFormatsFromConvMatrix(
			[]bool{false, false},
			[]types.ConnectionFormat{types.FormatAnalog},
			[]types.ConnectionFormat{types.FormatMono, types.FormatAuto},
		)
		assert.True(t, ok)
		assert.Empty(t, outSrc)
		assert.Empty(t, outSink)
	})
}

func TestShouldGoInDomain(t *testing.T) {
	tests := []struct {
		name      string
		visited   []types.DomainID
		candidate types.DomainID
		maxCycles int
		want      bool
	}{
		{"Empty", nil, 22, 0, true},
		{"StayInLast", []types.DomainID{22, 22, 30}, 30, 0, true},
		{"ReenterForbidden", []types.DomainID{22, 22, 30}, 22, 0, false},
		{"ReenterOneCycle", []types.DomainID{22, 30}, 22, 1, true},
		{"ReenterTwiceOneCycle", []types.DomainID{22, 30, 22, 30}, 22, 1, false},
		{"NewDomain", []types.DomainID{22, 30}, 41, 0, true},
		{"Unbounded", []types.DomainID{22, 30, 22, 30}, 22, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldGoInDomain(tt.visited, tt.candidate, tt.maxCycles))
		})
	}
}

type reverseChooser struct{}

func (reverseChooser) ConnectionFormatChoice(_ types.SourceID, _ types.SinkID, c []types.ConnectionFormat) []types.ConnectionFormat {
	out := make([]types.ConnectionFormat, 0, len(c))
	for i := len(c) - 1; i >= 0; i-- {
		out = append(out, c[i])
	}
	return out
}

func TestOrderCandidates(t *testing.T) {
	c := []types.ConnectionFormat{types.FormatMono, types.FormatStereo}

	assert.Equal(t, c, orderCandidates(LowestIndexChooser{}, 1, 2, c))
	assert.Equal(t, []types.ConnectionFormat{types.FormatStereo, types.FormatMono}, orderCandidates(reverseChooser{}, 1, 2, c))

	// 策略返回的候选外格式被过滤
	extra := chooserFunc(func([]types.ConnectionFormat) []types.ConnectionFormat {
		return []types.ConnectionFormat{types.FormatAuto, types.FormatStereo, types.FormatStereo}
	})
	assert.Equal(t, []types.ConnectionFormat{types.FormatStereo}, orderCandidates(extra, 1, 2, c))
}

type chooserFunc func([]types.ConnectionFormat) []types.ConnectionFormat

func (f chooserFunc) ConnectionFormatChoice(_ types.SourceID, _ types.SinkID, c []types.ConnectionFormat) []types.ConnectionFormat {
	return f(c)
}
