package esdapi

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-esd/esdapi/esdtest"
)

func discover(t *testing.T, s *Session, domain string) *ServiceDescription {
	t.Helper()
	desc, err := s.DiscoverDescription(context.Background(), domain)
	require.NoError(t, err)
	return desc
}

func TestBindOperation(t *testing.T) {
	desc := &ServiceDescription{
		URL: "https://esd.example.com/esd/ws/integration.asmx?WSDL",
		Raw: []byte(esdtest.Description("https://esd-node1.example.com/esd/ws/integration.asmx")),
	}

	b, err := bindOperation(desc, RetireOperation)
	require.NoError(t, err)

	assert.Equal(t, "https://esd-node1.example.com/esd/ws/integration.asmx", b.Endpoint)
	assert.Equal(t, esdtest.Namespace, b.Namespace)
	assert.Equal(t, "http://www.flexerasoftware.com/esd/AddFlexeraIdForRetireCampaign", b.SOAPAction)
	assert.Equal(t, "flexeraId", b.ParamName)
}

func TestBindOperation_Fallbacks(t *testing.T) {
	raw := `<?xml version="1.0"?>
<wsdl:definitions xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/" targetNamespace="http://tempuri.org/">
  <wsdl:binding name="B" type="tns:P">
    <wsdl:operation name="AddFlexeraIdForRetireCampaign"></wsdl:operation>
  </wsdl:binding>
</wsdl:definitions>`
	desc := &ServiceDescription{URL: "https://esd.example.com/esd/ws/integration.asmx?WSDL", Raw: []byte(raw)}

	b, err := bindOperation(desc, RetireOperation)
	require.NoError(t, err)

	assert.Equal(t, "https://esd.example.com/esd/ws/integration.asmx", b.Endpoint)
	assert.Equal(t, "http://tempuri.org/AddFlexeraIdForRetireCampaign", b.SOAPAction)
	assert.Equal(t, defaultParamName, b.ParamName)
}

func TestBindOperation_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not xml", "this is not a wsdl"},
		{"missing operation", `<definitions xmlns="http://schemas.xmlsoap.org/wsdl/" targetNamespace="urn:x"></definitions>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bindOperation(&ServiceDescription{URL: "http://x/?WSDL", Raw: []byte(tt.raw)}, RetireOperation)
			assert.Error(t, err)
		})
	}
}

func TestRetireRequest_MarshalXML(t *testing.T) {
	req := retireRequest{
		XMLName: xml.Name{Space: "http://www.flexerasoftware.com/esd/", Local: RetireOperation},
		Param:   "flexeraId",
		Value:   "PKG-42 & <co>",
	}
	out, err := xml.Marshal(req)
	require.NoError(t, err)
	assert.Equal(t,
		`<AddFlexeraIdForRetireCampaign xmlns="http://www.flexerasoftware.com/esd/"><flexeraId>PKG-42 &amp; &lt;co&gt;</flexeraId></AddFlexeraIdForRetireCampaign>`,
		string(out))
}

func TestRetireCampaignSOAP_Success(t *testing.T) {
	srv := esdtest.NewServer()
	defer srv.Close()

	s := newTestSession()
	res, err := s.RetireCampaignSOAP(context.Background(), discover(t, s, srv.URL), "PKG-42")
	require.NoError(t, err)

	assert.Equal(t, RetireOperation+"Response", res.Response.XMLName.Local)
	v, ok := res.Value("Success")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	v, _ = res.Value("FlexeraId")
	assert.Equal(t, "PKG-42", v)
	v, _ = res.Value("CampaignId")
	assert.Equal(t, "1042", v)
	_, ok = res.Value("Missing")
	assert.False(t, ok)
	assert.Contains(t, res.String(), "<CampaignId>1042</CampaignId>")

	var call *esdtest.Request
	for _, r := range srv.Requests(esdtest.IntegrationPath) {
		if r.Method == http.MethodPost {
			call = &r
		}
	}
	require.NotNil(t, call, "no SOAP call received")
	assert.Contains(t, call.Header.Get("SOAPAction"), "http://www.flexerasoftware.com/esd/AddFlexeraIdForRetireCampaign")
	assert.Contains(t, string(call.Body), `<AddFlexeraIdForRetireCampaign xmlns="http://www.flexerasoftware.com/esd/"><flexeraId>PKG-42</flexeraId>`)
	assert.Equal(t, "application/json", call.Header.Get("Accept"), "session headers carry over to SOAP traffic")
}

func TestRetireCampaignSOAP_NoDescription(t *testing.T) {
	_, err := newTestSession().RetireCampaignSOAP(context.Background(), nil, "PKG-42")
	require.Error(t, err)

	var ie *InvokeError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, RetireOperation, ie.Operation)
	assert.True(t, errors.Is(err, ErrNoDescription))
}

func TestRetireCampaignSOAP_Fault(t *testing.T) {
	srv := esdtest.NewServer(esdtest.WithSOAPFault("package PKG-42 is not in the catalog"))
	defer srv.Close()

	s := newTestSession()
	_, err := s.RetireCampaignSOAP(context.Background(), discover(t, s, srv.URL), "PKG-42")
	require.Error(t, err)

	assert.Equal(t, KindInvoke, Classify(err))
	assert.Contains(t, err.Error(), "not in the catalog")
}

func TestRetireCampaignSOAP_HTTPStatus(t *testing.T) {
	srv := esdtest.NewServer(esdtest.WithSOAPStatus(http.StatusBadGateway))
	defer srv.Close()

	s := newTestSession()
	_, err := s.RetireCampaignSOAP(context.Background(), discover(t, s, srv.URL), "PKG-42")
	require.Error(t, err)

	var ie *InvokeError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, KindInvoke, Classify(err))
}

func TestRetireCampaignSOAP_UnusableDescription(t *testing.T) {
	desc := &ServiceDescription{URL: "http://esd.invalid/esd/ws/integration.asmx?WSDL", Raw: []byte("<html>login</html>")}

	_, err := newTestSession().RetireCampaignSOAP(context.Background(), desc, "PKG-42")
	require.Error(t, err)

	var ie *InvokeError
	require.True(t, errors.As(err, &ie))
	assert.True(t, strings.HasPrefix(err.Error(), "invoke "+RetireOperation))
}
