package vectorstore

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantName string
		wantErr  string
	}{
		{
			name: "supabase",
			cfg: &config.Config{
				VectorStore:    config.VectorStoreSupabase,
				SupabaseURL:    "https://x.supabase.co",
				SupabaseKey:    "k",
				MatchFunction:  "match_albums",
				DocumentsTable: "albums",
			},
			wantName: "supabase",
		},
		{
			name: "qdrant",
			cfg: &config.Config{
				VectorStore:      config.VectorStoreQdrant,
				QdrantAddr:       "localhost:6334",
				QdrantCollection: "albums",
			},
			wantName: "qdrant",
		},
		{
			name:    "unknown",
			cfg:     &config.Config{VectorStore: "pinecone"},
			wantErr: "unknown vector store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(context.Background(), tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			assert.Equal(t, tt.wantName, store.Name())
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, validateIdentifier("table", "albums"))
	assert.NoError(t, validateIdentifier("table", "_albums_v2"))
	assert.Error(t, validateIdentifier("table", ""))
	assert.Error(t, validateIdentifier("table", "2albums"))
	assert.Error(t, validateIdentifier("table", "public.albums"))
}
