package carddav

import (
	"encoding/xml"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
)

// multistatus models the WebDAV 207 response body. Namespaced tags keep the
// decode independent of whatever prefixes the server chose.
type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href     string     `xml:"DAV: href"`
	Propstat []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Status string  `xml:"DAV: status"`
	Prop   davProp `xml:"DAV: prop"`
}

type davProp struct {
	DisplayName  string        `xml:"DAV: displayname"`
	ResourceType *resourceType `xml:"DAV: resourcetype"`
	GetETag      string        `xml:"DAV: getetag"`
	AddressData  string        `xml:"urn:ietf:params:xml:ns:carddav address-data"`
}

type resourceType struct {
	AddressBook *struct{} `xml:"urn:ietf:params:xml:ns:carddav addressbook"`
	Collection  *struct{} `xml:"DAV: collection"`
}

func parseMultistatus(body []byte) (*multistatus, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, apperr.Wrap(apperr.ResponseParse("malformed multistatus response"), err)
	}
	return &ms, nil
}

// isAddressBook reports whether any propstat marks this resource as a
// CardDAV address book collection.
func (r davResponse) isAddressBook() bool {
	for _, ps := range r.Propstat {
		if ps.Prop.ResourceType != nil && ps.Prop.ResourceType.AddressBook != nil {
			return true
		}
	}
	return false
}

func (r davResponse) displayName() string {
	for _, ps := range r.Propstat {
		if ps.Prop.DisplayName != "" {
			return ps.Prop.DisplayName
		}
	}
	return ""
}

func (r davResponse) addressData() string {
	for _, ps := range r.Propstat {
		if ps.Prop.AddressData != "" {
			return ps.Prop.AddressData
		}
	}
	return ""
}
