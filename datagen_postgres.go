//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"socialgraph/src/domain/entities"
	"socialgraph/src/helper/env"
	"socialgraph/src/infra/postgres"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Batch é um lote de usuários novos e as arestas que eles criam com usuários já gerados.
type Batch struct {
	Profiles []entities.Profile
	Edges    []entities.Edge
}

type stateWeight struct {
	State  entities.EdgeState
	Weight float64
}

// Distribuição aproximada de uma rede real: a maioria dos pedidos é aceita.
var stateWeights = []stateWeight{
	{entities.EdgeStateConnected, 0.70},
	{entities.EdgeStatePending, 0.20},
	{entities.EdgeStateIgnored, 0.10},
}

func newSQLClient(maxConnections int) (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	numUsers := flag.Int("users", 10000, "Número de usuários a serem criados. Use -1 para infinito.")
	bulkSize := flag.Int("bulk-size", 500, "Usuários por lote de COPY")
	avgConnections := flag.Int("avg-connections", 12, "Média de pedidos de conexão por usuário")
	numConsumers := flag.Int("consumers", 8, "Goroutines escrevendo no banco")
	ensureSchema := flag.Bool("ensure-schema", true, "Cria as tabelas se não existirem")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient(*numConsumers * 2)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if *ensureSchema {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
	}

	batches := make(chan Batch, *numConsumers*2)

	var wg sync.WaitGroup
	var totalUsers, totalEdges, totalErrors int64
	startTime := time.Now()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				users := atomic.LoadInt64(&totalUsers)
				edges := atomic.LoadInt64(&totalEdges)
				elapsed := time.Since(startTime)
				fmt.Printf("📊 Users: %d | Edges: %d | Errors: %d | Rate: %.1f users/s\n",
					users, edges, atomic.LoadInt64(&totalErrors), float64(users)/elapsed.Seconds())
			}
		}
	}()

	for i := 0; i < *numConsumers; i++ {
		wg.Add(1)
		go consumer(ctx, &wg, db, batches, i+1, &totalUsers, &totalEdges, &totalErrors)
	}

	wg.Add(1)
	go producer(ctx, &wg, batches, *numUsers, *bulkSize, *avgConnections)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("\n🏁 Seeding finished in %v\n", elapsed.Round(time.Second))
	fmt.Printf("📊 Users: %d | Edges: %d | Errors: %d\n",
		atomic.LoadInt64(&totalUsers), atomic.LoadInt64(&totalEdges), atomic.LoadInt64(&totalErrors))
}

func producer(ctx context.Context, wg *sync.WaitGroup, batches chan<- Batch, numUsers, bulkSize, avgConnections int) {
	defer wg.Done()
	defer close(batches)

	isInfinite := numUsers == -1
	// Ids já gerados; os pedidos só apontam para trás para que o par nunca se repita entre lotes
	generated := make([]string, 0)
	seen := make(map[[2]string]struct{})

	for isInfinite || len(generated) < numUsers {
		size := bulkSize
		if !isInfinite && len(generated)+size > numUsers {
			size = numUsers - len(generated)
		}

		batch := Batch{Profiles: make([]entities.Profile, 0, size)}
		for i := 0; i < size; i++ {
			profile := generateFakeProfile()
			batch.Profiles = append(batch.Profiles, profile)

			requests := rand.Intn(avgConnections*2 + 1)
			for j := 0; j < requests && len(generated) > 0; j++ {
				peer := generated[rand.Intn(len(generated))]
				pair := [2]string{min(profile.ID, peer), max(profile.ID, peer)}
				if _, ok := seen[pair]; ok {
					continue
				}
				seen[pair] = struct{}{}

				batch.Edges = append(batch.Edges, generateEdges(profile.ID, peer)...)
			}

			generated = append(generated, profile.ID)
		}

		select {
		case batches <- batch:
		case <-ctx.Done():
			fmt.Println("Producer stopping.")
			return
		}
	}
}

func consumer(ctx context.Context, wg *sync.WaitGroup, db *pgxpool.Pool, batches <-chan Batch, id int, totalUsers, totalEdges, totalErrors *int64) {
	defer wg.Done()

	for batch := range batches {
		if err := writeBatch(ctx, db, batch); err != nil {
			atomic.AddInt64(totalErrors, 1)
			log.Printf("consumer %d: failed to write batch: %v", id, err)
			continue
		}
		atomic.AddInt64(totalUsers, int64(len(batch.Profiles)))
		atomic.AddInt64(totalEdges, int64(len(batch.Edges)))
	}
}

// writeBatch grava usuários antes das arestas na mesma transação.
func writeBatch(ctx context.Context, db *pgxpool.Pool, batch Batch) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	profileRows := make([][]any, 0, len(batch.Profiles))
	for _, p := range batch.Profiles {
		profileRows = append(profileRows, []any{p.ID, p.Name, p.Email, p.Location, p.Bio, string(p.Privacy), p.CreatedAt})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"users"},
		[]string{"id", "name", "email", "location", "bio", "profile_privacy", "created_at"},
		pgx.CopyFromRows(profileRows),
	); err != nil {
		return fmt.Errorf("copy users: %w", err)
	}

	edgeRows := make([][]any, 0, len(batch.Edges))
	for _, e := range batch.Edges {
		edgeRows = append(edgeRows, []any{e.Owner, e.Peer, string(e.State), e.CreatedAt, e.UpdatedAt})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"connections"},
		[]string{"owner_id", "peer_id", "state", "created_at", "updated_at"},
		pgx.CopyFromRows(edgeRows),
	); err != nil {
		return fmt.Errorf("copy connections: %w", err)
	}

	return tx.Commit(ctx)
}

func generateFakeProfile() entities.Profile {
	privacy := entities.PrivacyPublic
	if rand.Float64() < 0.15 {
		privacy = entities.PrivacyPrivate
	}

	id := uuid.NewString()
	address := faker.GetRealAddress()

	return entities.Profile{
		ID:        id,
		Name:      faker.Name(),
		Email:     fmt.Sprintf("%s.%s@%s", faker.Username(), id[:8], faker.DomainName()),
		Location:  address.City + ", " + address.State,
		Bio:       faker.Sentence(),
		Privacy:   privacy,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -rand.Intn(5*365)),
	}
}

// generateEdges devolve as linhas de um pedido requester->peer no estado sorteado.
// Connected gera as duas direções, como o aceite faz.
func generateEdges(requester, peer string) []entities.Edge {
	requestedAt := time.Now().UTC().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
	changedAt := requestedAt.Add(time.Duration(rand.Intn(72)+1) * time.Hour)

	request := entities.Edge{Owner: requester, Peer: peer, State: pickState(), CreatedAt: requestedAt}

	switch request.State {
	case entities.EdgeStateConnected:
		request.UpdatedAt = &changedAt
		reverse := entities.Edge{Owner: peer, Peer: requester, State: entities.EdgeStateConnected, CreatedAt: changedAt}
		return []entities.Edge{request, reverse}
	case entities.EdgeStateIgnored:
		request.UpdatedAt = &changedAt
	}

	return []entities.Edge{request}
}

func pickState() entities.EdgeState {
	r := rand.Float64()
	for _, w := range stateWeights {
		if r < w.Weight {
			return w.State
		}
		r -= w.Weight
	}
	return entities.EdgeStatePending
}
