package captcha_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpbdbogor/portal/internal/captcha"
)

// seqSource returns the queued values in order, cycling when exhausted.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

func TestGenerateShapeAndAlphabet(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		code := captcha.Generate(src)
		require.Len(t, code, captcha.Length)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(captcha.Alphabet, r), "unexpected symbol %q in %q", r, code)
		}
	}
}

func TestGenerateUsesEveryPosition(t *testing.T) {
	src := &seqSource{vals: []int{0, 25, 26, 35}}
	assert.Equal(t, "AZ09", captcha.Generate(src))
}

func TestGenerateWithGlobalSource(t *testing.T) {
	assert.Len(t, captcha.Generate(nil), captcha.Length)
}

func TestAlphabetSize(t *testing.T) {
	assert.Len(t, captcha.Alphabet, 36)
}

func TestMatchIgnoresCase(t *testing.T) {
	assert.True(t, captcha.Match("AB12", "ab12"))
	assert.True(t, captcha.Match("AB12", "Ab12"))
	assert.False(t, captcha.Match("AB12", "AB13"))
	assert.False(t, captcha.Match("AB12", ""))
	assert.False(t, captcha.Match("", ""))
}

func TestChallengeRegeneratesOnFailure(t *testing.T) {
	src := &seqSource{vals: []int{0, 1, 2, 3, 4, 5, 6, 7}}
	c := captcha.New(src)
	require.Equal(t, "ABCD", c.Code(), "code is drawn on creation")

	assert.False(t, c.Check("wrong"))
	assert.Equal(t, "EFGH", c.Code(), "a failed check draws a new code")

	assert.True(t, c.Check("efgh"))
	assert.Equal(t, "EFGH", c.Code(), "a successful check keeps the code")
}

func TestChallengeRefresh(t *testing.T) {
	src := &seqSource{vals: []int{0, 0, 0, 0, 1, 1, 1, 1}}
	c := captcha.New(src)
	assert.Equal(t, "AAAA", c.Code())
	assert.Equal(t, "BBBB", c.Refresh())
	assert.Equal(t, "BBBB", c.Code())
}
