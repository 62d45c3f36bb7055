package l2

import (
	"time"

	"github.com/samber/mo"
)

// Expiry holds the expiry the exchange sees on the wire and the later one
// that goes into the signed message.
type Expiry struct {
	Wire   time.Time
	Signed time.Time
	// Hours is Signed floored to whole hours since the epoch, the time
	// resolution of the protocol
	Hours uint64
}

// WireMillis is the wire expiry in epoch milliseconds
func (e Expiry) WireMillis() int64 { return e.Wire.UnixMilli() }

// SignedMillis is the signed expiry in epoch milliseconds
func (e Expiry) SignedMillis() int64 { return e.Signed.UnixMilli() }

func newExpiry(wire time.Time, extension time.Duration) Expiry {
	signed := wire.Add(extension)
	return Expiry{
		Wire:   wire,
		Signed: signed,
		Hours:  uint64(signed.UnixMilli() / time.Hour.Milliseconds()),
	}
}

// OrderExpiry is now plus the order horizon, or the explicit expiry when
// given, with the order extension window added for signing.
func OrderExpiry(now time.Time, explicit mo.Option[time.Time], p Params) Expiry {
	return newExpiry(explicit.OrElse(now.Add(p.OrderHorizon)), p.OrderExtension)
}

// TransferExpiry starts from now, or the explicit expiry, and adds the
// transfer extension window.
func TransferExpiry(now time.Time, explicit mo.Option[time.Time], p Params) Expiry {
	return newExpiry(explicit.OrElse(now), p.TransferExtension)
}

// WithdrawalExpiry starts from now, or the explicit expiry, and adds the
// withdrawal extension window.
func WithdrawalExpiry(now time.Time, explicit mo.Option[time.Time], p Params) Expiry {
	return newExpiry(explicit.OrElse(now), p.WithdrawalExtension)
}
