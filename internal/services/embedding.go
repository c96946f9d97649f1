package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
)

// embeddingDimensions matches text-embedding-3-small
const embeddingDimensions = 1536

// bearerAuth implements credentials.PerRPCCredentials for Qdrant API keys
type bearerAuth struct {
	apiKey string
}

func (b *bearerAuth) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.apiKey}, nil
}

func (b *bearerAuth) RequireTransportSecurity() bool {
	return false
}

// EmbeddingService generates text embeddings and persists them in Qdrant
type EmbeddingService struct {
	openaiClient *openai.Client
	collections  qdrant.CollectionsClient
	points       qdrant.PointsClient
	conn         *grpc.ClientConn
}

// NewEmbeddingService connects to Qdrant and configures the OpenAI client
func NewEmbeddingService(openaiAPIKey, qdrantURL, qdrantAPIKey string) (*EmbeddingService, error) {
	var dialOpts []grpc.DialOption
	if qdrantAPIKey != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(&bearerAuth{apiKey: qdrantAPIKey}))
	}
	dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.NewClient(qdrantURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &EmbeddingService{
		openaiClient: openai.NewClient(openaiAPIKey),
		collections:  qdrant.NewCollectionsClient(conn),
		points:       qdrant.NewPointsClient(conn),
		conn:         conn,
	}, nil
}

// Close releases the Qdrant connection
func (s *EmbeddingService) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// Health checks the Qdrant connection by listing collections
func (s *EmbeddingService) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.collections.List(ctx, &qdrant.ListCollectionsRequest{}); err != nil {
		return fmt.Errorf("qdrant connection failed: %w", err)
	}
	return nil
}

// GenerateEmbedding embeds a single string with text-embedding-3-small
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.openaiClient.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}
	return resp.Data[0].Embedding, nil
}

// memoryCollectionName returns the per-conversation memory collection
func memoryCollectionName(conversationID string) string {
	return fmt.Sprintf("memories_conversation_%s", conversationID)
}

// ensureCollection creates the collection if it does not exist yet
func (s *EmbeddingService) ensureCollection(ctx context.Context, name string) error {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: name})
	if err == nil {
		return nil
	}

	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     embeddingDimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// StoreMemoryVector upserts a memory embedding under the memory record ID
func (s *EmbeddingService) StoreMemoryVector(ctx context.Context, conversationID, memoryID string, vector []float32, payload map[string]interface{}) error {
	collection := memoryCollectionName(conversationID)
	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: memoryID}},
		Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}}},
		Payload: toQdrantPayload(payload),
	}

	wait := true
	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert memory vector: %w", err)
	}
	return nil
}

// MemoryHit is a similarity match from the memory collection
type MemoryHit struct {
	ID      string
	Score   float32
	Summary string
}

// SearchMemories returns the memories most similar to query for the
// conversation, newest-relevant first. Lookup errors degrade to an empty
// result; retrieval never blocks a turn.
func (s *EmbeddingService) SearchMemories(ctx context.Context, conversationID, query string, limit int) []MemoryHit {
	vector, err := s.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("Memory search embedding failed")
		return nil
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: memoryCollectionName(conversationID),
		Vector:         vector,
		Limit:          uint64(limit),
		Filter:         notExpiredFilter(time.Now()),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		// Collection may not exist yet for a young conversation.
		log.Debug().Err(err).Str("conversation_id", conversationID).Msg("Memory search returned no collection")
		return nil
	}

	hits := make([]MemoryHit, 0, len(resp.Result))
	for _, point := range resp.Result {
		hit := MemoryHit{Score: point.Score}
		if id, ok := point.Id.PointIdOptions.(*qdrant.PointId_Uuid); ok {
			hit.ID = id.Uuid
		}
		if summary, ok := point.Payload["summary"]; ok {
			hit.Summary = summary.GetStringValue()
		}
		hits = append(hits, hit)
	}
	return hits
}

// notExpiredFilter matches points whose expires_at payload is still in the
// future. The relational purge only deletes rows; without this filter a
// point past its 90 days would keep ranking into prompts.
func notExpiredFilter(now time.Time) *qdrant.Filter {
	cutoff := float64(now.Unix())
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "expires_at",
						Range: &qdrant.Range{Gt: &cutoff},
					},
				},
			},
		},
	}
}

// Recall implements agent.MemoryRecall over SearchMemories
func (s *EmbeddingService) Recall(ctx context.Context, conversationID uuid.UUID, query string, limit int) []agent.RecalledMemory {
	hits := s.SearchMemories(ctx, conversationID.String(), query, limit)
	memories := make([]agent.RecalledMemory, 0, len(hits))
	for _, hit := range hits {
		if hit.Summary == "" {
			continue
		}
		memories = append(memories, agent.RecalledMemory{Summary: hit.Summary, Score: hit.Score})
	}
	return memories
}

func toQdrantPayload(payload map[string]interface{}) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case float64:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		case int:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
		case int64:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case bool:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
		default:
			out[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
		}
	}
	return out
}
