package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/sessionjwt"
	"github.com/MrEthical07/sessionjwt/internal/envconfig"
	"github.com/MrEthical07/sessionjwt/metrics/export/prometheus"
	"github.com/MrEthical07/sessionjwt/settings"
)

type config struct {
	Conns       int    `env:"LOADTEST_CONNS" envDefault:"20000"`
	Concurrency int    `env:"LOADTEST_CONCURRENCY" envDefault:"64"`
	RedisAddr   string `env:"REDIS_ADDR"`
	KeyPrefix   string `env:"LOADTEST_KEY_PREFIX" envDefault:"sessionjwt:conn:"`
	Throttle    bool   `env:"LOADTEST_THROTTLE" envDefault:"false"`
	Logging     envconfig.Logging
}

func main() {
	var cfg config
	if err := envconfig.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.IntVar(&cfg.Conns, "conns", cfg.Conns, "number of simulated connections")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "number of concurrent workers")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address; if empty, miniredis is used")
	flag.BoolVar(&cfg.Throttle, "throttle", cfg.Throttle, "enable the failure throttle")
	printMetrics := flag.Bool("metrics", false, "print Prometheus metrics after the run")
	flag.Parse()

	if cfg.Conns <= 0 || cfg.Concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "conns and concurrency must be > 0")
		os.Exit(2)
	}

	logger, err := envconfig.NewLogger(os.Stderr, cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	addr := cfg.RedisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	builder := sessionjwt.New().
		WithLogger(logger).
		WithLatencyHistograms(true)
	if cfg.Throttle {
		builder = builder.WithFailureThrottle(client)
	}
	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d connections...\n", cfg.Conns)
	startSeed := time.Now()
	tokens, err := seed(ctx, client, cfg, engine.Config().Settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	trustedStats := runPhase(cfg.Concurrency, cfg.Conns/2, func(i int) error {
		n := 2 * i
		return trustedSession(ctx, engine, settings.NewRedis(client, connKey(cfg, n)), tokens[n], userID(n))
	})
	untrustedStats := runPhase(cfg.Concurrency, cfg.Conns-cfg.Conns/2, func(i int) error {
		n := 2*i + 1
		return untrustedSession(ctx, engine, settings.NewRedis(client, connKey(cfg, n)), userID(n))
	})

	fmt.Println("---- results ----")
	printStats("trusted", trustedStats)
	printStats("untrusted", untrustedStats)

	if *printMetrics {
		fmt.Print(prometheus.NewPrometheusExporter(engine).Render())
	}
}

// seed publishes per-connection parameters to Redis. Even connections get key
// material and a signed token; odd connections only get a claims parameter.
func seed(ctx context.Context, client redis.UniversalClient, cfg config, params sessionjwt.SettingsConfig) ([]string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	jwk := `{"kty":"OKP","crv":"Ed25519","alg":"EdDSA","x":"` + base64.RawURLEncoding.EncodeToString(pub) + `"}`

	tokens := make([]string, cfg.Conns)
	for i := 0; i < cfg.Conns; i++ {
		p := settings.NewRedis(client, connKey(cfg, i))
		if i%2 == 0 {
			token, err := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, gjwt.MapClaims{
				"sub":  userID(i),
				"role": "authenticated",
			}).SignedString(priv)
			if err != nil {
				return nil, err
			}
			tokens[i] = token
			err = p.Publish(ctx, map[string]string{params.KeyParam: jwk})
			if err != nil {
				return nil, err
			}
			continue
		}
		err := p.Publish(ctx, map[string]string{
			params.ClaimsParam: `{"sub":"` + userID(i) + `","role":"anon"}`,
		})
		if err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

func trustedSession(ctx context.Context, engine *sessionjwt.Engine, p settings.Provider, token, want string) error {
	ctx = sessionjwt.WithClientAddr(ctx, "127.0.0.1:5432")
	conn, err := engine.Open(ctx, p)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if err := conn.Init(ctx); err != nil {
		return err
	}
	if err := conn.JWTSessionInit(ctx, token); err != nil {
		return err
	}
	return expectUser(ctx, conn, want)
}

func untrustedSession(ctx context.Context, engine *sessionjwt.Engine, p settings.Provider, want string) error {
	conn, err := engine.Open(ctx, p)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return expectUser(ctx, conn, want)
}

func expectUser(ctx context.Context, conn *sessionjwt.Conn, want string) error {
	got, ok := conn.UserID(ctx)
	if !ok || got != want {
		return fmt.Errorf("user_id = %q, want %q", got, want)
	}
	return nil
}

func runPhase(concurrency, ops int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: conns=%d failures=%d total=%s conns/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func connKey(cfg config, i int) string {
	return cfg.KeyPrefix + strconv.Itoa(i)
}

func userID(i int) string {
	return "user-" + strconv.Itoa(i)
}
