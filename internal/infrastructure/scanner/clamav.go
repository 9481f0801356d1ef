package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	clamd "github.com/dutchcoders/go-clamd"
	"go.uber.org/zap"
)

var ErrScanFailed = errors.New("malware scan failed")

type Verdict struct {
	Infected  bool
	Signature string
}

type ClamAV struct {
	logger *zap.Logger
	cd     *clamd.Clamd
}

// New returns nil when addr is empty; callers treat a nil scanner as disabled.
func New(logger *zap.Logger, addr string) *ClamAV {
	if addr == "" {
		return nil
	}

	return &ClamAV{
		logger: logger,
		cd:     clamd.NewClamd(addr),
	}
}

func (c *ClamAV) Scan(ctx context.Context, data []byte) (Verdict, error) {
	abort := make(chan bool, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			abort <- true
		case <-done:
		}
	}()

	results, err := c.cd.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	var v Verdict
	for res := range results {
		switch res.Status {
		case clamd.RES_FOUND:
			v.Infected = true
			v.Signature = res.Description
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			return Verdict{}, fmt.Errorf("%w: %s", ErrScanFailed, res.Description)
		}
	}
	if err = ctx.Err(); err != nil {
		return Verdict{}, err
	}

	if v.Infected {
		c.logger.Warn("malware detected", zap.String("signature", v.Signature))
	}

	return v, nil
}
