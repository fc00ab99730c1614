package mongodb

import (
	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/errx"
)

func wrap(op string, err error, data map[string]any) error {
	if err == nil {
		return nil
	}
	if _, ok := errx.From(err); ok {
		return err
	}
	e := domain.ErrSystemUnavailable.WithData("op", op).WithCause(err)
	if len(data) > 0 {
		e = e.WithDataMap(data)
	}
	return e
}
