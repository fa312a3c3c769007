package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"unicode/utf8"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcAddrFromEnv returns the gRPC server address from ROFKA_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("ROFKA_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPC creates a client for the admin gRPC endpoint with insecure transport for local/dev.
func dialGRPC() (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// getJSON fetches url and decodes the JSON body into out.
func getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("http error: %s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// withLocalRuntime opens the store at dataDir for a one-off read.
func withLocalRuntime(dataDir string, fn func(*runtime.Runtime) error) error {
	cfg := cfgpkg.Default()
	cfg.DataDir = dataDir
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// decodedValue returns a map with one of payload_json, payload_text, or payload_b64.
func decodedValue(payload []byte) map[string]any {
	out := map[string]any{}
	// Try JSON first if it looks like JSON
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal(payload, &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	if utf8.Valid(payload) {
		out["payload_text"] = string(payload)
		return out
	}
	out["payload_b64"] = base64.StdEncoding.EncodeToString(payload)
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
