package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/recordstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// TestLoadTemplatesDefaults loads templates that were never saved. It expects the defaults and
// that changing the result does not change the defaults.
func TestLoadTemplatesDefaults(t *testing.T) {
	templates, err := NewTemplates(kvstore.NewMemory()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplates, templates)

	templates[Introduction] = model.EmailTemplate{}
	assert.NotEmpty(t, DefaultTemplates[Introduction].Body)
}

// TestLoadTemplatesLegacyStrings loads templates stored as plain bodies. It expects default
// subjects per template name.
func TestLoadTemplatesLegacyStrings(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, kvstore.TemplatesKey,
		[]byte(`{"follow-up":"Thanks!","introduction":{"subject":"Hi","body":"Hello"},"custom":"Body"}`)))

	templates, err := NewTemplates(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Templates{
		FollowUp:     {Subject: "Following up on interview", Body: "Thanks!"},
		Introduction: {Subject: "Hi", Body: "Hello"},
		"custom":     {Subject: "Application for position", Body: "Body"},
	}, templates)
}

// TestSaveTemplate saves one template. It expects the others to be kept.
func TestSaveTemplate(t *testing.T) {
	store := NewTemplates(kvstore.NewMemory())
	ctx := context.Background()

	saved, err := store.Save(ctx, Introduction, model.EmailTemplate{Subject: " Hello ", Body: "Nice to meet you.\n"})
	require.NoError(t, err)
	assert.Equal(t, model.EmailTemplate{Subject: "Hello", Body: "Nice to meet you."}, saved[Introduction])
	assert.Equal(t, DefaultTemplates[FollowUp], saved[FollowUp])

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

// TestSaveTemplateWithoutName saves a template without a name. It expects a ValidationError.
func TestSaveTemplateWithoutName(t *testing.T) {
	_, err := NewTemplates(kvstore.NewMemory()).Save(context.Background(), " ", model.EmailTemplate{})
	assert.ErrorIs(t, err, recordstore.ErrValidation)
}

func TestTemplatesIoError(t *testing.T) {
	_, err := NewTemplates(unavailableStore{}).Load(context.Background())
	assert.ErrorIs(t, err, recordstore.ErrIO)
}
