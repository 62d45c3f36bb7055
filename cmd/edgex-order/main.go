// Command edgex-order signs a single order and, unless -dry-run is set,
// submits it. Credentials come from the environment or a .env file:
// EDGEX_BASE_URL, EDGEX_ACCOUNT_ID and EDGEX_SIGNING_KEY.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/banky/go-edgex/constants"
	"github.com/banky/go-edgex/exchange"
	"github.com/banky/go-edgex/info"
	"github.com/banky/go-edgex/internal/utils"
	"github.com/banky/go-edgex/l2"
	"github.com/banky/go-edgex/types"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		envFile    = flag.String("env", ".env", "dotenv file to load")
		contractID = flag.String("contract", "10000001", "contract id")
		side       = flag.String("side", "BUY", "BUY or SELL")
		orderType  = flag.String("type", "LIMIT", "LIMIT or MARKET")
		price      = flag.String("price", "", "limit price; market orders resolve one when empty")
		size       = flag.String("size", "0.001", "order size")
		dryRun     = flag.Bool("dry-run", false, "sign and print the order without submitting it")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	_ = godotenv.Load(*envFile)

	level := zapcore.InfoLevel
	if *debug {
		level = zapcore.DebugLevel
	}
	logger, err := utils.NewLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, orderArgs{
		contractID: *contractID,
		side:       types.Side(*side),
		orderType:  types.OrderType(*orderType),
		price:      *price,
		size:       *size,
		dryRun:     *dryRun,
	}); err != nil {
		logger.Fatal("order failed", zap.Error(err))
	}
}

type orderArgs struct {
	contractID string
	side       types.Side
	orderType  types.OrderType
	price      string
	size       string
	dryRun     bool
}

func run(logger *zap.Logger, args orderArgs) error {
	accountID, err := strconv.ParseUint(os.Getenv("EDGEX_ACCOUNT_ID"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid EDGEX_ACCOUNT_ID: %w", err)
	}

	signer, err := l2.StarkSignerFromHex(os.Getenv("EDGEX_SIGNING_KEY"))
	if err != nil {
		return fmt.Errorf("invalid EDGEX_SIGNING_KEY: %w", err)
	}

	baseURL := os.Getenv("EDGEX_BASE_URL")
	if baseURL == "" {
		baseURL = constants.TESTNET_API_URL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := exchange.New(exchange.Config{
		BaseURL:   baseURL,
		Timeout:   10,
		AccountID: accountID,
		Signer:    signer,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	meta, err := e.Info().Metadata(ctx)
	if err != nil {
		return err
	}

	intent := exchange.NewLimitOrder(args.contractID, args.side, args.price, args.size)
	if args.orderType == types.OrderTypeMarket {
		var opts []exchange.OrderOption
		if args.price != "" {
			opts = append(opts, exchange.WithMarketOrderPrice(args.price))
		}
		intent = exchange.NewMarketOrder(args.contractID, args.side, args.size, opts...)
	}

	if args.dryRun {
		return printSigned(ctx, e, meta, signer, accountID, intent)
	}

	result, err := e.CreateOrder(ctx, intent)
	if err != nil {
		return err
	}

	logger.Info("submitted",
		zap.String("orderId", result.OrderID),
		zap.String("clientOrderId", result.ClientOrderID),
	)
	return nil
}

// printSigned encodes the order locally and prints the signed values
func printSigned(
	ctx context.Context,
	e *exchange.Exchange,
	meta *info.Metadata,
	signer l2.Signer,
	accountID uint64,
	intent l2.OrderIntent,
) error {
	if intent.Type == types.OrderTypeMarket && intent.Price == "" {
		price, err := e.MarketOrderPrice(ctx, intent.ContractID, intent.Side)
		if err != nil {
			return err
		}
		intent.Price = price
	}

	encoder, err := l2.NewEncoder(l2.EncoderConfig{
		AccountID: accountID,
		Signer:    signer,
	})
	if err != nil {
		return err
	}

	signed, err := encoder.EncodeOrder(meta, intent)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"contractId":       intent.ContractID,
		"wirePrice":        signed.WirePrice,
		"clientOrderId":    signed.ClientOrderID,
		"nonce":            signed.Nonce,
		"expireTime":       signed.Expiry.WireMillis(),
		"l2ExpireTime":     signed.Expiry.SignedMillis(),
		"l2Value":          signed.Value.String(),
		"l2LimitFee":       signed.LimitFee.String(),
		"amountSynthetic":  signed.Message.AmountSynthetic.String(),
		"amountCollateral": signed.Message.AmountCollateral.String(),
		"amountFee":        signed.Message.AmountFee.String(),
		"l2Signature":      signed.Signature.RS(),
	}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
