package ports

import "context"

type LocationCache interface {
	Get(ctx context.Context, query string) ([]string, bool, error)
	Set(ctx context.Context, query string, locations []string) error
}
