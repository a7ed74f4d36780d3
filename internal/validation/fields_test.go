package validation

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecraft-backend/internal/sections"
)

func validTopLevel() Submission {
	return Submission{Heading: "Welcome", Subheading: "A short intro", BackgroundColor: "#FFF"}
}

func TestSubmissionScenario(t *testing.T) {
	schema := sections.Schema{
		textDef("body", true, 3, 10),
		linkDef("cta", true, "youtube.com"),
	}
	schema[1].Order = 1

	sub := validTopLevel()
	sub.Values = map[string]string{"body": "hi", "cta": "https://youtube.com/watch?v=x"}
	errs := ValidateSubmission(schema, sub)
	require.Len(t, errs, 1)
	assert.Equal(t, "must be at least 3 characters", errs["body"])

	sub.Values = map[string]string{"body": "hello", "cta": "https://vimeo.com/1"}
	errs = ValidateSubmission(schema, sub)
	require.Len(t, errs, 1)
	assert.Contains(t, errs["cta"], "youtube.com")

	sub.Values = map[string]string{"body": "hello", "cta": "https://youtube.com/watch?v=x"}
	errs = ValidateSubmission(schema, sub)
	assert.Empty(t, errs)
	assert.NoError(t, errs.Err())
}

func TestSubmissionReportsAllFieldsAtOnce(t *testing.T) {
	schema := sections.Schema{textDef("body", true, 0, 0), linkDef("cta", true)}

	errs := ValidateSubmission(schema, Submission{BackgroundColor: "red"})

	assert.Equal(t, Errors{
		"heading":         "is required",
		"subheading":      "is required",
		"backgroundColor": "must be a hex color like #fff or #1a2b3c",
		"body":            "is required",
		"cta":             "is required",
	}, errs)
	assert.Error(t, errs.Err())
	assert.True(t, strings.HasPrefix(errs.Error(), "validation failed: backgroundColor:"))
}

func TestSubmissionRejectsFileForTextSection(t *testing.T) {
	schema := sections.Schema{textDef("body", false, 0, 0)}
	sub := validTopLevel()
	sub.Files = map[string]*FileInfo{"body": {Name: "a.txt", Size: 1}}

	errs := ValidateSubmission(schema, sub)
	assert.Equal(t, "does not accept file uploads", errs["body"])
}

func TestHeadingBounds(t *testing.T) {
	assert.NotNil(t, ValidateHeading("ab"))
	assert.Nil(t, ValidateHeading("abc"))
	assert.Nil(t, ValidateSubheading(strings.Repeat("ж", 100)))
	assert.NotNil(t, ValidateSubheading(strings.Repeat("ж", 101)))
}

func TestBackgroundColorMatchesHexGrammar(t *testing.T) {
	grammar := regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	alphabet := []rune("0123456789abcdefABCDEFxyzG#- ")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(9)
		var b strings.Builder
		if rng.Intn(4) != 0 {
			b.WriteByte('#')
		}
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		candidate := b.String()

		want := grammar.MatchString(candidate)
		got := ValidateBackgroundColor(candidate) == nil
		if got != want {
			t.Fatalf("%q: got valid=%v, want %v", candidate, got, want)
		}
	}

	for _, c := range []string{"#abc", "#ABCDEF", "#a1B2c3"} {
		assert.Nil(t, ValidateBackgroundColor(c), fmt.Sprintf("expected %s to be valid", c))
	}
}
