package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadWriteClient separa o primário (leituras por chave e escritas) da réplica (consultas pelo índice reverso).
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewReadWriteClient(
	readHost string,
	writeHost string,
	readPort string,
	writePort string,
	dbname string,
	username string,
	password string,
	maxConnections int,
) (*ReadWriteClient, error) {

	readPool, err := NewPostgresClient(readHost, readPort, dbname, username, password, maxConnections)
	if err != nil {
		return nil, err
	}

	writePool, err := NewPostgresClient(writeHost, writePort, dbname, username, password, maxConnections)
	if err != nil {
		readPool.Close()
		return nil, err
	}

	return &ReadWriteClient{
		readPool:  readPool,
		writePool: writePool,
	}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

func (rwc *ReadWriteClient) HealthCheck(ctx context.Context) error {
	if err := rwc.writePool.Ping(ctx); err != nil {
		return fmt.Errorf("write pool ping failed: %w", err)
	}
	if err := rwc.readPool.Ping(ctx); err != nil {
		return fmt.Errorf("read pool ping failed: %w", err)
	}
	return nil
}

func (rwc *ReadWriteClient) Close() {
	rwc.readPool.Close()
	rwc.writePool.Close()
}
