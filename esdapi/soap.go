package esdapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hooklift/gowsdl"
	"github.com/hooklift/gowsdl/soap"
)

// RetireOperation is the SOAP operation that registers a package for a
// retire campaign.
const RetireOperation = "AddFlexeraIdForRetireCampaign"

// defaultParamName is the request element used when the schema does not
// name one.
const defaultParamName = "flexeraId"

// Node is a generic XML element.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []Node     `xml:",any"`
}

// Find returns the first descendant (depth first) with the given local name.
func (n *Node) Find(local string) (*Node, bool) {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == local {
			return c, true
		}
		if found, ok := c.Find(local); ok {
			return found, true
		}
	}
	return nil, false
}

// RetireCampaignResult is the structured response of RetireOperation.
type RetireCampaignResult struct {
	// Response is the operation's response element.
	Response Node

	// Raw is the inner XML of the response element.
	Raw string
}

// Value returns the trimmed text of the first element named local.
func (r *RetireCampaignResult) Value(local string) (string, bool) {
	n, ok := r.Response.Find(local)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(n.Text), true
}

// String returns the raw response content.
func (r *RetireCampaignResult) String() string {
	return strings.TrimSpace(r.Raw)
}

// retireResponse captures any response element as a tree and as raw XML.
type retireResponse struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []Node     `xml:",any"`
	Raw     string     `xml:",innerxml"`
}

// retireRequest is the document/literal wrapper element. XMLName carries
// the target namespace discovered at run time.
type retireRequest struct {
	XMLName xml.Name
	Param   string
	Value   string
}

// MarshalXML writes <Operation xmlns="tns"><param>value</param></Operation>;
// the parameters inherit the default namespace.
func (r retireRequest) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: r.XMLName}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.EncodeElement(r.Value, xml.StartElement{Name: xml.Name{Local: r.Param}}); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// operationBinding is what the SOAP call needs from the description.
type operationBinding struct {
	Endpoint   string
	Namespace  string
	SOAPAction string
	ParamName  string
}

// bindOperation reads the binding of op from desc.
func bindOperation(desc *ServiceDescription, op string) (*operationBinding, error) {
	var def gowsdl.WSDL
	if err := xml.NewDecoder(bytes.NewReader(desc.Raw)).Decode(&def); err != nil {
		return nil, fmt.Errorf("parse service description: %w", err)
	}

	b := &operationBinding{
		Endpoint:  desc.Endpoint(),
		Namespace: def.TargetNamespace,
		ParamName: defaultParamName,
	}

	found := false
	for _, binding := range def.Binding {
		for _, o := range binding.Operations {
			if o.Name != op {
				continue
			}
			found = true
			if o.SOAPOperation.SOAPAction != "" {
				b.SOAPAction = o.SOAPOperation.SOAPAction
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("operation %s not found in service description", op)
	}
	if b.SOAPAction == "" {
		b.SOAPAction = strings.TrimRight(b.Namespace, "/") + "/" + op
	}

	for _, svc := range def.Service {
		for _, port := range svc.Ports {
			if loc := port.SOAPAddress.Location; loc != "" {
				b.Endpoint = loc
				break
			}
		}
	}

	for _, schema := range def.Types.Schemas {
		for _, el := range schema.Elements {
			if el.Name != op || el.ComplexType == nil {
				continue
			}
			if len(el.ComplexType.Sequence) > 0 && el.ComplexType.Sequence[0].Name != "" {
				b.ParamName = el.ComplexType.Sequence[0].Name
			}
		}
	}

	return b, nil
}

// RetireCampaignSOAP registers flexeraID for retirement through the SOAP
// interface described by desc. The SOAP client sends through the session's
// HTTP client. Every failure is returned as *InvokeError.
func (s *Session) RetireCampaignSOAP(ctx context.Context, desc *ServiceDescription, flexeraID string) (*RetireCampaignResult, error) {
	if desc == nil {
		return nil, &InvokeError{Operation: RetireOperation, Err: ErrNoDescription}
	}

	b, err := bindOperation(desc, RetireOperation)
	if err != nil {
		return nil, &InvokeError{Operation: RetireOperation, Err: err}
	}

	s.logger.Debug("soap binding",
		"operation", RetireOperation,
		"endpoint", b.Endpoint,
		"namespace", b.Namespace,
		"soap_action", b.SOAPAction)

	client := soap.NewClient(b.Endpoint, soap.WithHTTPClient(s.HTTPClient()))

	req := retireRequest{
		XMLName: xml.Name{Space: b.Namespace, Local: RetireOperation},
		Param:   b.ParamName,
		Value:   flexeraID,
	}
	resp := &retireResponse{}
	if err := client.CallContext(ctx, b.SOAPAction, req, resp); err != nil {
		return nil, &InvokeError{Operation: RetireOperation, Err: s.soapCause(b.Endpoint, err)}
	}

	return &RetireCampaignResult{
		Response: Node{XMLName: resp.XMLName, Attrs: resp.Attrs, Nodes: resp.Nodes},
		Raw:      resp.Raw,
	}, nil
}

// soapCause maps SOAP client errors onto the taxonomy where possible so the
// InvokeError chain carries status and body.
func (s *Session) soapCause(endpoint string, err error) error {
	var he *soap.HTTPError
	if errors.As(err, &he) {
		return &HTTPStatusError{
			Op:         "soap",
			Method:     http.MethodPost,
			URL:        endpoint,
			StatusCode: he.StatusCode,
			Body:       he.ResponseBody,
		}
	}
	var fault *soap.SOAPFault
	if errors.As(err, &fault) {
		return fmt.Errorf("soap fault %s: %w", fault.Code, err)
	}
	var xe *xml.SyntaxError
	if errors.As(err, &xe) {
		return fmt.Errorf("decode soap response: %w", err)
	}
	return &TransportError{Op: "soap", Method: http.MethodPost, URL: endpoint, Err: err}
}
