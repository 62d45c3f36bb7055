package info

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/helpers/tdsuite"
	"github.com/maxatome/go-testdeep/td"
)

// cassetteRestClient replays recorded gateway responses keyed by path
type cassetteRestClient struct {
	cassettes map[string][]byte
	calls     map[string]int
}

// loadCassettes maps each path to cassettes/<name>.json
func loadCassettes(t testing.TB, byPath map[string]string) *cassetteRestClient {
	client := &cassetteRestClient{
		cassettes: make(map[string][]byte),
		calls:     make(map[string]int),
	}

	for path, name := range byPath {
		data, err := os.ReadFile(filepath.Join("cassettes", name+".json"))
		if err != nil {
			t.Fatalf("failed to load cassette file %s: %v", name, err)
		}
		client.cassettes[path] = data
	}

	return client
}

func (c *cassetteRestClient) replay(path string, result any) error {
	c.calls[path]++

	data, ok := c.cassettes[path]
	if !ok {
		return fmt.Errorf("no cassette for %s", path)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to unmarshal cassette into result: %w", err)
	}
	return nil
}

func (c *cassetteRestClient) Get(_ context.Context, path string, _ map[string]string, result any) error {
	return c.replay(path, result)
}

func (c *cassetteRestClient) Post(_ context.Context, path string, _ any, result any) error {
	return c.replay(path, result)
}

// ===== Suite definition =====

type InfoCassetteSuite struct{}

func TestInfoCassetteSuite(t *testing.T) {
	tdsuite.Run(t, &InfoCassetteSuite{})
}

func (s *InfoCassetteSuite) TestMetadata(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{metadataPath: "metadata"})
	info := &Info{rest: client, logger: nopLogger}

	meta, err := info.Metadata(context.Background())
	require.CmpNoError(err)
	require.NotNil(meta)

	require.Len(meta.ContractList, 3)
	require.Len(meta.CoinList, 3)

	eth, ok := meta.Contract("10000002")
	require.True(ok)
	assert.Cmp(eth.ContractName, "ETHUSDT")
	assert.Cmp(eth.QuoteCoinID, "1000")
	assert.Cmp(eth.StarkExResolution.Big(), big.NewInt(100_000_000))
	assert.Cmp(eth.DefaultTakerFeeRate, "0.001")
	assert.Cmp(eth.TickSize, "0.01")

	usdt, ok := meta.Coin("1000")
	require.True(ok)
	assert.Cmp(usdt.StarkExResolution.Big(), big.NewInt(1_000_000))
	assert.Cmp(usdt.Decimal.String(), "6")

	collateral := meta.Global.StarkExCollateralCoin
	assert.Cmp(collateral.CoinID, "1000")
	assert.Cmp(collateral.StarkExAssetID.Hex(), usdt.StarkExAssetID.Hex())

	_, ok = meta.Contract("99999999")
	assert.False(ok)
}

func (s *InfoCassetteSuite) TestCachedMetadataFetchesOnce(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{metadataPath: "metadata"})
	info := &Info{rest: client, logger: nopLogger}

	first, err := info.CachedMetadata(context.Background())
	require.CmpNoError(err)

	second, err := info.CachedMetadata(context.Background())
	require.CmpNoError(err)

	assert.Shallow(second, first)
	assert.Cmp(client.calls[metadataPath], 1)

	_, err = info.Metadata(context.Background())
	require.CmpNoError(err)
	assert.Cmp(client.calls[metadataPath], 2)
}

func (s *InfoCassetteSuite) TestTicker(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{tickerPath: "ticker"})
	info := &Info{rest: client, logger: nopLogger}

	ticker, err := info.Ticker(context.Background(), "10000002")
	require.CmpNoError(err)

	assert.Cmp(ticker.ContractID, "10000002")
	assert.Cmp(ticker.OraclePrice, "2995.8734")
	assert.Cmp(ticker.LastPrice, "2995.31")
}

func (s *InfoCassetteSuite) TestServerTime(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{serverTimePath: "server_time"})
	info := &Info{rest: client, logger: nopLogger}

	ts, err := info.ServerTime(context.Background())
	require.CmpNoError(err)

	assert.Cmp(ts, time.UnixMilli(1717060012345))
}
