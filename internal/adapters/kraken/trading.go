package kraken

// trading.go — cliente autenticado para la API privada de Kraken.
//
// Cada request firmado lleva:
//   API-Key:  la key del usuario
//   API-Sign: HMAC-SHA512(secret, path + SHA256(nonce + postdata)) en base64
// con un nonce estrictamente creciente por credencial.

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/ports"
)

const addOrderPath = "/0/private/AddOrder"

// AuthClient extiende el Client base con la firma de la API privada.
type AuthClient struct {
	*Client
	apiKey    string
	apiSecret string

	mu        sync.Mutex
	lastNonce int64
}

// NewAuthClient crea un cliente de trading. La key y el secret vienen del
// entorno (ver config); el secret es el base64 que entrega Kraken.
func NewAuthClient(baseURL, apiKey, apiSecret string) (*AuthClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("kraken.NewAuthClient: api key and secret are required")
	}
	return &AuthClient{
		Client:    NewClient(baseURL),
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}, nil
}

// PlaceOrder implementa ports.Executor: firma y envía una orden limit.
// Devuelve el primer transaction id de la respuesta.
func (ac *AuthClient) PlaceOrder(ctx context.Context, pair string, side ports.OrderSide, orderType string, price, volume float64) (string, error) {
	data := url.Values{}
	data.Set("nonce", strconv.FormatInt(ac.nonce(), 10))
	data.Set("ordertype", orderType)
	data.Set("type", string(side))
	data.Set("pair", pair)
	data.Set("price", strconv.FormatFloat(price, 'f', -1, 64))
	data.Set("volume", strconv.FormatFloat(volume, 'f', -1, 64))

	var result struct {
		TxID []string `json:"txid"`
	}
	if err := ac.doPrivate(ctx, addOrderPath, data, &result); err != nil {
		return "", fmt.Errorf("kraken.PlaceOrder: %w", err)
	}
	if len(result.TxID) == 0 {
		return "", fmt.Errorf("kraken.PlaceOrder: response without txid")
	}
	return result.TxID[0], nil
}

// nonce devuelve un nonce estrictamente creciente en milisegundos.
func (ac *AuthClient) nonce() int64 {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	n := time.Now().UnixMilli()
	if n <= ac.lastNonce {
		n = ac.lastNonce + 1
	}
	ac.lastNonce = n
	return n
}

// Sign calcula el valor del header API-Sign para un path y payload dados.
// Exportada para poder verificarla contra vectores conocidos en tests.
func Sign(apiSecret, path, nonce, postdata string) (string, error) {
	// Kraken entrega el secret en base64; algunos exports pierden el padding
	if pad := len(apiSecret) % 4; pad != 0 {
		apiSecret += strings.Repeat("=", 4-pad)
	}
	secret, err := base64.StdEncoding.DecodeString(apiSecret)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}

	inner := sha256.Sum256([]byte(nonce + postdata))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(inner[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// doPrivate ejecuta un POST firmado contra la API privada.
// No reintenta: reenviar una orden tras un timeout podría duplicarla.
func (ac *AuthClient) doPrivate(ctx context.Context, path string, data url.Values, out any) error {
	postdata := data.Encode()

	sig, err := Sign(ac.apiSecret, path, data.Get("nonce"), postdata)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ac.baseURL+path, strings.NewReader(postdata))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", ac.apiKey)
	req.Header.Set("API-Sign", sig)

	resp, err := ac.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &ports.VenueError{Reasons: []string{fmt.Sprintf("status %d: %s", resp.StatusCode, body)}}
	}

	var env apiResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Error) > 0 {
		return &ports.VenueError{Reasons: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}
