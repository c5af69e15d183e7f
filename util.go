package main

import (
	"context"

	"github.com/modelworks/geoenv/pkg/python/pypa/bdist"
)

func verifyWheel(ctx context.Context, filename string) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	wheel, err := bdist.OpenWheel(filename)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(wheel.Close())
	}()

	if err := wheel.CheckVersion(ctx); err != nil {
		return err
	}
	return wheel.VerifyRecord()
}
