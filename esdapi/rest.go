package esdapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/smnsjas/go-esd/esdapi/transport"
)

// CampaignsPath is the REST resource for campaigns.
const CampaignsPath = "/esd/api/Campaigns"

// CampaignTypeRetire is the campaign type code for retirement.
const CampaignTypeRetire = 3

// CampaignRecord is one element of the POST /esd/api/Campaigns body.
type CampaignRecord struct {
	// CampaignType is always CampaignTypeRetire here.
	CampaignType int `json:"campaignType"`
	// FlexeraID identifies the package.
	FlexeraID string `json:"flexeraId"`
	// PropertyType is the kind of audience ("Group").
	PropertyType string `json:"propertyType"`
	// PropertyName is the directory attribute matched ("memberOf").
	PropertyName string `json:"propertyName"`
	// PropertyValue is the group id.
	PropertyValue string `json:"propertyValue"`
	Visible       bool   `json:"visible"`
	ApplyChildOU  bool   `json:"applyChildOU"`
	// PropertyDisplayName is shown in the console; the group id again.
	PropertyDisplayName string `json:"propertyDisplayName"`
}

// NewCampaignRecords returns the single-record payload associating
// flexeraID with groupID.
func NewCampaignRecords(flexeraID, groupID string) []CampaignRecord {
	return []CampaignRecord{{
		CampaignType:        CampaignTypeRetire,
		FlexeraID:           flexeraID,
		PropertyType:        "Group",
		PropertyName:        "memberOf",
		PropertyValue:       groupID,
		Visible:             true,
		ApplyChildOU:        false,
		PropertyDisplayName: groupID,
	}}
}

// CampaignURL returns the POST target for flexeraID, with the query in the
// order the server documents: flexeraid, then CampaignType.
func CampaignURL(domain, flexeraID string) string {
	return fmt.Sprintf("%s?flexeraid=%s&CampaignType=%d",
		joinURL(domain, CampaignsPath), url.QueryEscape(flexeraID), CampaignTypeRetire)
}

// CampaignResponse is the server's answer to the campaign POST. The body is
// opaque text; the server does not return structured JSON for it.
type CampaignResponse struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// RetireCampaignREST associates flexeraID with groupID through the REST
// interface. A 2xx response is returned as *CampaignResponse; a non-2xx
// response yields *HTTPStatusError carrying status, headers and both
// bodies; no response yields *TransportError.
func (s *Session) RetireCampaignREST(ctx context.Context, domain, flexeraID, groupID string) (*CampaignResponse, error) {
	body, err := json.Marshal(NewCampaignRecords(flexeraID, groupID))
	if err != nil {
		return nil, fmt.Errorf("encode campaign payload: %w", err)
	}

	header := http.Header{"Content-Type": []string{transport.ContentTypeJSON}}
	resp, err := s.do(ctx, "rest", http.MethodPost, CampaignURL(domain, flexeraID), header, body)
	if err != nil {
		return nil, err
	}

	return &CampaignResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(resp.Body),
	}, nil
}

// String returns the raw body.
func (r *CampaignResponse) String() string {
	return r.Body
}
