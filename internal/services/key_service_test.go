package services

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyFormat = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestGenerateKeyValue_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		value, err := generateKeyValue()
		require.NoError(t, err)
		assert.Regexp(t, keyFormat, value)
	}
}

func TestGenerateKeyValue_UniformDistribution(t *testing.T) {
	// 20000 ключей по 16 символов: ~8889 вхождений на символ алфавита.
	// Остаточный перекос byte % 36 дал бы первым восьми символам
	// примерно +14% - такой выброс тест ловит с большим запасом.
	const iterations = 20000

	counts := make(map[rune]int, len(keyAlphabet))
	for i := 0; i < iterations; i++ {
		value, err := generateKeyValue()
		require.NoError(t, err)
		for _, r := range strings.ReplaceAll(value, "-", "") {
			counts[r]++
		}
	}

	expected := float64(iterations*keyGroupCount*keyGroupLen) / float64(len(keyAlphabet))
	for _, r := range keyAlphabet {
		got := float64(counts[r])
		assert.InDelta(t, expected, got, expected*0.08, "character %c is over- or under-represented", r)
	}
}

func TestGenerateKeyValue_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		value, err := generateKeyValue()
		require.NoError(t, err)
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate key generated: %s", value)
		}
		seen[value] = struct{}{}
	}
}
