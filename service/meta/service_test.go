package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(baseDir, "doc.json"), []byte(`{"name":"ops","limit":5}`), 0o644))
	assert.Nil(t, os.WriteFile(filepath.Join(baseDir, "doc.yaml"), []byte("name: ops\nlimit: 5\n"), 0o644))

	type document struct {
		Name  string `json:"name" yaml:"name"`
		Limit int    `json:"limit" yaml:"limit"`
	}

	service := New(afs.New(), baseDir)
	for _, location := range []string{"doc.json", "doc.yaml"} {
		ok, err := service.Exists(ctx, location)
		assert.Nil(t, err)
		assert.True(t, ok, location)

		actual := &document{}
		err = service.Load(ctx, location, actual)
		assert.Nil(t, err, location)
		assert.Equal(t, &document{Name: "ops", Limit: 5}, actual, location)
	}

	ok, err := service.Exists(ctx, "absent.json")
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestService_ResolveEnv(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(baseDir, "doc.yaml"), []byte("name: ops\n"), 0o644))
	t.Setenv("TREASURY_META_TEST_DIR", baseDir)

	service := New(afs.New(), "")
	actual := map[string]interface{}{}
	err := service.Load(ctx, "${env.TREASURY_META_TEST_DIR}/doc.yaml", &actual)
	assert.Nil(t, err)
	assert.Equal(t, "ops", actual["name"])
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(baseDir, "doc.json"), []byte(`{}`), 0o644))

	service := New(afs.New(), baseDir)
	assert.Nil(t, service.Delete(ctx, "doc.json"))
	ok, err := service.Exists(ctx, "doc.json")
	assert.Nil(t, err)
	assert.False(t, ok)
}
