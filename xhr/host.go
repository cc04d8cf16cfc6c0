package xhr

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	pb "google.golang.org/protobuf/proto"
)

// NetHost executes serialized fetch requests with net/http. It is the host side of the
// HTTPClient boundary.
type NetHost struct {
	client   *http.Client
	insecure *http.Client
}

// NewNetHost returns a NetHost whose requests time out after timeout. Zero means no
// timeout.
func NewNetHost(timeout time.Duration) *NetHost {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opted in per request

	return &NetHost{
		client:   &http.Client{Timeout: timeout},
		insecure: &http.Client{Timeout: timeout, Transport: tr},
	}
}

// HostCall decodes an HTTPClient request, executes it and encodes the outcome. Request
// failures are reported through the response status rather than the error return.
func (h *NetHost) HostCall(_, _, _ string, payload []byte) ([]byte, error) {
	var req proto.HTTPClient
	if err := pb.Unmarshal(payload, &req); err != nil {
		return pb.Marshal(&proto.HTTPClientResponse{
			Status: &sdkproto.Status{Status: err.Error(), Code: hostStatusBadInput},
		})
	}

	hreq, err := http.NewRequest(req.GetMethod(), req.GetUrl(), bytes.NewReader(req.GetBody()))
	if err != nil {
		return pb.Marshal(&proto.HTTPClientResponse{
			Status: &sdkproto.Status{Status: err.Error(), Code: hostStatusBadInput},
		})
	}
	for name, header := range req.GetHeaders() {
		for _, v := range header.GetValues() {
			hreq.Header.Add(name, v)
		}
	}

	client := h.client
	if req.GetInsecure() {
		client = h.insecure
	}

	hresp, err := client.Do(hreq)
	if err != nil {
		return pb.Marshal(&proto.HTTPClientResponse{
			Status: &sdkproto.Status{Status: err.Error(), Code: hostStatusError},
		})
	}
	defer hresp.Body.Close()

	body, err := io.ReadAll(hresp.Body)
	if err != nil {
		return pb.Marshal(&proto.HTTPClientResponse{
			Status: &sdkproto.Status{Status: err.Error(), Code: hostStatusError},
		})
	}

	out := &proto.HTTPClientResponse{
		Status:  &sdkproto.Status{Status: "OK", Code: hostStatusOK},
		Code:    int32(hresp.StatusCode),
		Headers: make(map[string]*proto.Header, len(hresp.Header)),
		Body:    body,
	}
	for name, values := range hresp.Header {
		out.Headers[name] = &proto.Header{Values: values}
	}

	return pb.Marshal(out)
}
