package carddav

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
)

// parseVCards decodes every vCard in data into contacts. Cards without an
// FN are dropped; cards without a UID get a deterministic id derived from
// the name so repeated fetches stay stable. Undecodable input yields no
// contacts rather than an error, matching the best-effort contract of
// contact listing.
func parseVCards(data string) []Contact {
	var contacts []Contact

	dec := vcard.NewDecoder(strings.NewReader(data))
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}
		if contact, ok := contactFromCard(card); ok {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

func contactFromCard(card vcard.Card) (Contact, bool) {
	name := card.Value(vcard.FieldFormattedName)
	if name == "" {
		return Contact{}, false
	}

	contact := Contact{
		ID:           card.Value(vcard.FieldUID),
		Name:         name,
		Organization: card.Value(vcard.FieldOrganization),
		Title:        card.Value(vcard.FieldTitle),
		Notes:        card.Value(vcard.FieldNote),
	}
	if contact.ID == "" {
		contact.ID = fallbackID(name)
	}

	for _, field := range card[vcard.FieldEmail] {
		if field.Value == "" {
			continue
		}
		contact.Emails = append(contact.Emails, ContactEmail{
			Email: field.Value,
			Label: fieldLabel(field),
		})
	}
	for _, field := range card[vcard.FieldTelephone] {
		if field.Value == "" {
			continue
		}
		contact.Phones = append(contact.Phones, ContactPhone{
			Number: field.Value,
			Label:  fieldLabel(field),
		})
	}
	return contact, true
}

// fieldLabel extracts the TYPE parameter, lowercased, skipping the "pref"
// marker some exporters emit as a type.
func fieldLabel(field *vcard.Field) string {
	for _, t := range field.Params[vcard.ParamType] {
		t = strings.ToLower(strings.TrimSuffix(t, ";"))
		if t != "" && t != "pref" && t != "internet" {
			return t
		}
	}
	return ""
}

// fallbackID hashes the contact name into a stable synthetic id.
func fallbackID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("%x", h.Sum64())
}
