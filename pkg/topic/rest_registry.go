package topic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/quiby-ai/kafkasink/pkg/httpx"
)

// restProxyAccept is the media type of the REST Proxy v2 API.
const restProxyAccept = "application/vnd.kafka.v2+json"

// RESTRegistry asks a Kafka REST Proxy whether a topic exists.
type RESTRegistry struct {
	client  httpx.Client
	baseURL string
}

// NewRESTRegistry queries the proxy at baseURL, e.g. http://rest-proxy:8082.
func NewRESTRegistry(client httpx.Client, baseURL string) *RESTRegistry {
	return &RESTRegistry{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *RESTRegistry) TopicExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	u := r.baseURL + "/topics/" + url.PathEscape(name)
	resp, err := r.client.DoGET(ctx, u, nil, map[string]string{"Accept": restProxyAccept})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	switch resp.Status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("%w: %s returned %d", ErrRegistryUnavailable, u, resp.Status)
}
