package vectorstore

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

const contentPayloadKey = "content"

// QdrantStore keeps album chunks in a Qdrant collection using cosine distance
type QdrantStore struct {
	conn           *grpc.ClientConn
	points         qdrant.PointsClient
	collections    qdrant.CollectionsClient
	collectionName string
}

// NewQdrantStore connects to Qdrant over gRPC
func NewQdrantStore(addr, collectionName string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("could not connect to Qdrant: %w", err)
	}

	return &QdrantStore{
		conn:           conn,
		points:         qdrant.NewPointsClient(conn),
		collections:    qdrant.NewCollectionsClient(conn),
		collectionName: collectionName,
	}, nil
}

// Name returns the backend name
func (s *QdrantStore) Name() string {
	return "qdrant"
}

// Match searches the collection; Qdrant applies the threshold and limit server-side
func (s *QdrantStore) Match(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.Match, error) {
	span := sentry.StartSpan(ctx, "qdrant.search")
	span.SetTag("collection", s.collectionName)
	defer span.Finish()

	searchResult, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collectionName,
		Vector:         embedding,
		Limit:          uint64(count),
		ScoreThreshold: proto.Float32(float32(threshold)),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("failed to search points in Qdrant: %w", err)
	}

	matches := make([]models.Match, 0, len(searchResult.GetResult()))
	for _, hit := range searchResult.GetResult() {
		matches = append(matches, models.Match{
			ID:         pointIDString(hit.GetId()),
			Content:    hit.GetPayload()[contentPayloadKey].GetStringValue(),
			Similarity: float64(hit.GetScore()),
		})
	}
	return matches, nil
}

// Insert upserts documents, creating the collection on first use
func (s *QdrantStore) Insert(ctx context.Context, documents []models.Document) error {
	if len(documents) == 0 {
		return nil
	}

	var vectorSize uint64
	points := make([]*qdrant.PointStruct, 0, len(documents))
	for _, doc := range documents {
		if len(doc.Embedding) == 0 {
			continue
		}
		vectorSize = uint64(len(doc.Embedding))

		pointID := doc.ID
		if pointID == "" {
			pointID = uuid.NewString()
		}

		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: doc.Embedding}}},
			Payload: map[string]*qdrant.Value{
				contentPayloadKey: {Kind: &qdrant.Value_StringValue{StringValue: doc.Content}},
			},
		})
	}

	if len(points) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, vectorSize); err != nil {
		return err
	}

	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points to Qdrant: %w", err)
	}
	return nil
}

// Close closes the gRPC connection
func (s *QdrantStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collectionName,
	})
	if err == nil {
		return nil
	}

	log.Printf("Collection %s does not exist, creating (size %d)", s.collectionName, vectorSize)
	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func pointIDString(id *qdrant.PointId) string {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10)
	default:
		return ""
	}
}
