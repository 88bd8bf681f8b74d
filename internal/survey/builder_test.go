package survey

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	got *Payload
	err error
}

func (s *recordingSaver) CreateSurvey(ctx context.Context, p Payload) error {
	s.got = &p
	return s.err
}

func titles(b *Builder) []string {
	var out []string
	for _, q := range b.Questions() {
		out = append(out, q.Title)
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	b := New()

	assert.Equal(t, "Patient Satisfaction Survey", b.Name)
	assert.Equal(t, "Please help us improve our services by completing this survey.", b.Description)
	assert.Empty(t, b.Questions())
}

func TestAddAppliesKindDefaults(t *testing.T) {
	b := New()

	mc := b.Add(MultipleChoice)
	assert.Equal(t, []string{"Option 1", "Option 2"}, mc.Options)
	assert.Equal(t, "New Question", mc.Title)

	rs := b.Add(RatingScale)
	assert.Equal(t, 5, rs.ScaleMax)

	sel, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, rs.ID, sel.ID)
	assert.NotEqual(t, mc.ID, rs.ID)
}

func TestUpdate(t *testing.T) {
	b := New()
	q := b.Add(ShortText)

	title := "How was your visit?"
	required := true
	require.True(t, b.Update(q.ID, Patch{Title: &title, Required: &required}))

	got := b.Questions()[0]
	assert.Equal(t, title, got.Title)
	assert.True(t, got.Required)
	assert.Equal(t, ShortText, got.Kind)

	kind := MultipleChoice
	b.Update(q.ID, Patch{Kind: &kind})
	assert.Equal(t, []string{"Option 1", "Option 2"}, b.Questions()[0].Options)

	assert.False(t, b.Update("missing", Patch{Title: &title}))
}

func TestDeleteClearsSelection(t *testing.T) {
	b := New()
	first := b.Add(ShortText)
	second := b.Add(Number)

	require.True(t, b.Delete(first.ID))
	sel, ok := b.Selected()
	require.True(t, ok, "deleting an unselected question keeps the selection")
	assert.Equal(t, second.ID, sel.ID)

	require.True(t, b.Delete(second.ID))
	_, ok = b.Selected()
	assert.False(t, ok)
	assert.Empty(t, b.Questions())
}

func TestMove(t *testing.T) {
	b := New()
	for _, title := range []string{"a", "b", "c"} {
		q := b.Add(ShortText)
		title := title
		b.Update(q.ID, Patch{Title: &title})
	}
	qs := b.Questions()

	assert.True(t, b.Move(qs[2].ID, Up))
	assert.Equal(t, []string{"a", "c", "b"}, titles(b))

	assert.False(t, b.Move(qs[0].ID, Up), "top cannot move up")
	assert.False(t, b.Move(qs[1].ID, Down), "bottom cannot move down")
	assert.Equal(t, []string{"a", "c", "b"}, titles(b))

	assert.True(t, b.Move(qs[0].ID, Down))
	assert.Equal(t, []string{"c", "a", "b"}, titles(b))
}

func TestOptions(t *testing.T) {
	b := New()
	q := b.Add(MultipleChoice)

	b.AddOption(q.ID)
	assert.Equal(t, []string{"Option 1", "Option 2", "Option 3"}, b.Questions()[0].Options)

	assert.True(t, b.SetOption(q.ID, 0, "Excellent"))
	assert.True(t, b.RemoveOption(q.ID, 1))
	assert.Equal(t, []string{"Excellent", "Option 3"}, b.Questions()[0].Options)

	assert.False(t, b.SetOption(q.ID, 9, "x"))
	assert.False(t, b.RemoveOption(q.ID, -1))
}

func TestSetScaleMaxClamps(t *testing.T) {
	b := New()
	q := b.Add(RatingScale)

	b.SetScaleMax(q.ID, 1)
	assert.Equal(t, 2, b.Questions()[0].ScaleMax)

	b.SetScaleMax(q.ID, 10)
	assert.Equal(t, 10, b.Questions()[0].ScaleMax)
}

func TestBackendType(t *testing.T) {
	tests := map[Kind]string{
		ShortText:      "text",
		LongText:       "text",
		MultipleChoice: "choice",
		RatingScale:    "text",
		YesNo:          "text",
		Date:           "text",
		Number:         "number",
	}
	for kind, want := range tests {
		assert.Equal(t, want, BackendType(kind), string(kind))
	}
}

func TestPayloadTrims(t *testing.T) {
	b := New()
	b.Name = "  Clinic feedback  "
	q := b.Add(RatingScale)
	title, desc := "  Rate us ", " 1 is worst  "
	b.Update(q.ID, Patch{Title: &title, Description: &desc})
	b.Add(YesNo)

	p := b.Payload()
	assert.Equal(t, "Clinic feedback", p.Name)
	require.Len(t, p.Questions, 2)
	assert.Equal(t, PayloadQuestion{Title: "Rate us", Description: "1 is worst", QuestionType: "text"}, p.Questions[0])
	assert.Equal(t, "text", p.Questions[1].QuestionType)
}

func TestSave(t *testing.T) {
	b := New()
	b.Add(Number)
	saver := &recordingSaver{}

	require.NoError(t, b.Save(context.Background(), saver))
	require.NotNil(t, saver.got)
	assert.Equal(t, "number", saver.got.Questions[0].QuestionType)

	saver.err = errors.New("boom")
	assert.Error(t, b.Save(context.Background(), saver))
}

func TestSaveRequiresName(t *testing.T) {
	b := New()
	b.Name = "   "
	saver := &recordingSaver{}

	err := b.Save(context.Background(), saver)
	assert.Equal(t, apperrors.KindInput, apperrors.GetKind(err))
	assert.Nil(t, saver.got)
}

func TestPreview(t *testing.T) {
	b := New()
	q := b.Add(MultipleChoice)
	req := true
	b.Update(q.ID, Patch{Required: &req})
	b.Add(RatingScale)

	out := b.Preview()
	assert.True(t, strings.HasPrefix(out, "Patient Satisfaction Survey\n"))
	assert.Contains(t, out, "1. New Question *")
	assert.Contains(t, out, "Options: Option 1, Option 2")
	assert.Contains(t, out, "2. New Question\n   Scale: 1 - 5")
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("yes/no")
	assert.True(t, ok)
	assert.Equal(t, YesNo, k)

	_, ok = ParseKind("slider")
	assert.False(t, ok)
}
