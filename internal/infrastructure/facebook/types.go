package facebook

import "strings"

// LeadField is one answer in a lead form submission.
type LeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// LeadDetails is the Graph API representation of a submitted lead form.
type LeadDetails struct {
	ID          string      `json:"id"`
	CreatedTime string      `json:"created_time"`
	FieldData   []LeadField `json:"field_data"`
}

// FieldMap flattens field_data into a lowercase-keyed map of first values.
func (d *LeadDetails) FieldMap() map[string]string {
	m := make(map[string]string, len(d.FieldData))
	for _, f := range d.FieldData {
		if len(f.Values) > 0 {
			m[strings.ToLower(f.Name)] = f.Values[0]
		}
	}
	return m
}

// ConversionUserData carries hashed user identifiers for event matching.
type ConversionUserData struct {
	Emails []string `json:"em,omitempty"`
	Phones []string `json:"ph,omitempty"`
}

// ConversionCustomData carries CRM context attached to a conversion event.
type ConversionCustomData struct {
	LeadgenID  string  `json:"leadgen_id,omitempty"`
	LeadStatus string  `json:"lead_status,omitempty"`
	Value      float64 `json:"value"`
	Currency   string  `json:"currency"`
}

// ConversionEvent is one Conversions API event.
type ConversionEvent struct {
	EventName  string               `json:"event_name"`
	EventTime  int64                `json:"event_time"`
	UserData   ConversionUserData   `json:"user_data"`
	CustomData ConversionCustomData `json:"custom_data"`
}

// AdAccount is one advertising account visible to the token.
type AdAccount struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountStatus int    `json:"account_status"`
}

// AdInsight is one aggregated insights row. Currency is enriched from the
// account after the insights call.
type AdInsight struct {
	Impressions     string `json:"impressions"`
	Clicks          string `json:"clicks"`
	Spend           string `json:"spend"`
	CPC             string `json:"cpc"`
	CostPerLead     string `json:"cost_per_lead,omitempty"`
	DateStart       string `json:"date_start"`
	DateStop        string `json:"date_stop"`
	AccountName     string `json:"account_name"`
	AccountCurrency string `json:"account_currency,omitempty"`
}

// Page is one page visible to the token.
type Page struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
