// island/mojang/mojang_service.go
package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodbu "github.com/skyhavenmc/island-services/shared/mongodb"
)

// mojangProfile represents the structure of the JSON response from Mojang's
// Session Server.
type mojangProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// nameDocument is the cached name entry in MongoDB.
type nameDocument struct {
	UUID      string    `bson:"_id"`
	Name      string    `bson:"name"`
	FetchedAt time.Time `bson:"fetched_at"`
}

// NameService resolves player UUIDs to display names. Names come from
// Mojang's Session Server and are cached in MongoDB so invite messages do
// not hit the external API on every lookup.
type NameService struct {
	httpClient    *http.Client
	mojangBaseURL string

	nameCollection *mongo.Collection
	cacheTTL       time.Duration
}

// NewNameService creates a new NameService backed by the given cache
// collection. Cached names older than cacheTTL are refreshed on access.
func NewNameService(mongoClient *mongodbu.Client, namesCollectionName string, cacheTTL time.Duration) *NameService {
	return &NameService{
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		mojangBaseURL:  "https://sessionserver.mojang.com/session/minecraft/profile",
		nameCollection: mongoClient.Collection(namesCollectionName),
		cacheTTL:       cacheTTL,
	}
}

// Name resolves a player's display name, cache first. A stale cache entry is
// still served when Mojang is unreachable.
func (ns *NameService) Name(ctx context.Context, uuid string) (string, error) {
	var cached nameDocument
	err := ns.nameCollection.FindOne(ctx, bson.M{"_id": uuid}).Decode(&cached)
	if err == nil && time.Since(cached.FetchedAt) < ns.cacheTTL {
		return cached.Name, nil
	}
	if err != nil && err != mongo.ErrNoDocuments {
		log.Printf("WARN: Name cache lookup failed for %s: %v", uuid, err)
	}

	name, mojangErr := ns.fetchFromMojang(ctx, uuid)
	if mojangErr != nil {
		if cached.Name != "" {
			return cached.Name, nil
		}
		return "", mojangErr
	}

	filter := bson.M{"_id": uuid}
	update := bson.M{"$set": bson.M{"name": name, "fetched_at": time.Now()}}
	if _, err := ns.nameCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		log.Printf("WARN: Failed to cache name for %s: %v", uuid, err)
	}

	return name, nil
}

// fetchFromMojang fetches a Minecraft username from Mojang's API using the
// player's UUID.
func (ns *NameService) fetchFromMojang(ctx context.Context, uuid string) (string, error) {
	url := fmt.Sprintf("%s/%s", ns.mojangBaseURL, uuid)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create Mojang API request: %w", err)
	}

	resp, err := ns.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make Mojang API request for UUID %s: %w", uuid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("mojang profile not found for UUID %s (Status: %d)", uuid, resp.StatusCode)
		}
		return "", fmt.Errorf("unexpected status from Mojang API for UUID %s: %d", uuid, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Mojang API response body for UUID %s: %w", uuid, err)
	}

	var profile mojangProfile
	if err := json.Unmarshal(bodyBytes, &profile); err != nil {
		return "", fmt.Errorf("failed to unmarshal Mojang API response for UUID %s: %w", uuid, err)
	}

	if profile.Name == "" {
		return "", fmt.Errorf("mojang API returned empty username for UUID %s", uuid)
	}

	return profile.Name, nil
}
