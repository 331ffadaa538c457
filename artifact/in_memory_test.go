package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
)

// Interface compliance (compile-time assertions)
var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	svc := NewInMemoryStore()
	data := []byte("hello")
	require.NoError(t, svc.Save("t1", "a1", data))

	data[0] = 'H'
	out, err := svc.Get("t1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out[0] = 'x'
	out2, _ := svc.Get("t1", "a1")
	assert.Equal(t, "hello", string(out2))
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	svc := NewInMemoryStore()
	require.NoError(t, svc.Save("t1", "b.docx", []byte("2")))
	require.NoError(t, svc.Save("t1", "a.docx", []byte("1")))

	ids, err := svc.List("t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.docx", "b.docx"}, ids)

	require.NoError(t, svc.Delete("t1", "a.docx"))
	_, err = svc.Get("t1", "a.docx")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete("t1", "a.docx"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete("t2", "a.docx"), ErrNotFound)

	ids, _ = svc.List("unknown")
	assert.Empty(t, ids)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.Save("t1", fmt.Sprintf("a%d", i%10), []byte("data")))
			_, _ = svc.List("t1")
		}(i)
	}
	wg.Wait()
	ids, err := svc.List("t1")
	require.NoError(t, err)
	assert.Len(t, ids, 10)
}
