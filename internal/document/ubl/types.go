package ubl

import "encoding/xml"

// Invoice is the root element. Element names carry their namespace prefix
// literally; the prefixes are bound by the xmlns attributes of the root.
type Invoice struct {
	XMLName  xml.Name `xml:"Invoice"`
	Xmlns    string   `xml:"xmlns,attr"`
	XmlnsCAC string   `xml:"xmlns:cac,attr"`
	XmlnsCBC string   `xml:"xmlns:cbc,attr"`

	CustomizationID      string        `xml:"cbc:CustomizationID"`
	ID                   string        `xml:"cbc:ID"`
	IssueDate            string        `xml:"cbc:IssueDate"`
	DueDate              string        `xml:"cbc:DueDate"`
	InvoiceTypeCode      string        `xml:"cbc:InvoiceTypeCode"`
	DocumentCurrencyCode string        `xml:"cbc:DocumentCurrencyCode"`
	Supplier             PartyWrapper  `xml:"cac:AccountingSupplierParty"`
	Customer             PartyWrapper  `xml:"cac:AccountingCustomerParty"`
	PaymentMeans         PaymentMeans  `xml:"cac:PaymentMeans"`
	TaxTotal             TaxTotal      `xml:"cac:TaxTotal"`
	MonetaryTotal        MonetaryTotal `xml:"cac:LegalMonetaryTotal"`
	Lines                []InvoiceLine `xml:"cac:InvoiceLine"`
}

type Amount struct {
	Currency string `xml:"currencyID,attr"`
	Value    string `xml:",chardata"`
}

type Quantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

type PartyWrapper struct {
	Party Party `xml:"cac:Party"`
}

type Party struct {
	PostalAddress Address         `xml:"cac:PostalAddress"`
	TaxScheme     *PartyTaxScheme `xml:"cac:PartyTaxScheme,omitempty"`
	LegalEntity   LegalEntity     `xml:"cac:PartyLegalEntity"`
	Contact       *Contact        `xml:"cac:Contact,omitempty"`
}

type Address struct {
	StreetName string  `xml:"cbc:StreetName"`
	CityName   string  `xml:"cbc:CityName"`
	PostalZone string  `xml:"cbc:PostalZone"`
	Country    Country `xml:"cac:Country"`
}

type Country struct {
	IdentificationCode string `xml:"cbc:IdentificationCode"`
}

type PartyTaxScheme struct {
	CompanyID string    `xml:"cbc:CompanyID"`
	TaxScheme TaxScheme `xml:"cac:TaxScheme"`
}

type TaxScheme struct {
	ID string `xml:"cbc:ID"`
}

type LegalEntity struct {
	RegistrationName string `xml:"cbc:RegistrationName"`
	CompanyID        string `xml:"cbc:CompanyID,omitempty"`
}

type Contact struct {
	ElectronicMail string `xml:"cbc:ElectronicMail"`
}

type PaymentMeans struct {
	Code      string  `xml:"cbc:PaymentMeansCode"`
	PaymentID string  `xml:"cbc:PaymentID"`
	Account   Account `xml:"cac:PayeeFinancialAccount"`
}

type Account struct {
	ID string `xml:"cbc:ID"`
}

type TaxTotal struct {
	TaxAmount Amount      `xml:"cbc:TaxAmount"`
	Subtotal  TaxSubtotal `xml:"cac:TaxSubtotal"`
}

type TaxSubtotal struct {
	TaxableAmount Amount      `xml:"cbc:TaxableAmount"`
	TaxAmount     Amount      `xml:"cbc:TaxAmount"`
	Category      TaxCategory `xml:"cac:TaxCategory"`
}

type TaxCategory struct {
	ID        string    `xml:"cbc:ID"`
	Percent   string    `xml:"cbc:Percent"`
	TaxScheme TaxScheme `xml:"cac:TaxScheme"`
}

type MonetaryTotal struct {
	LineExtensionAmount Amount `xml:"cbc:LineExtensionAmount"`
	TaxExclusiveAmount  Amount `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusiveAmount  Amount `xml:"cbc:TaxInclusiveAmount"`
	ChargeTotalAmount   Amount `xml:"cbc:ChargeTotalAmount"`
	PayableAmount       Amount `xml:"cbc:PayableAmount"`
}

type InvoiceLine struct {
	ID                  int      `xml:"cbc:ID"`
	Quantity            Quantity `xml:"cbc:InvoicedQuantity"`
	LineExtensionAmount Amount   `xml:"cbc:LineExtensionAmount"`
	Item                Item     `xml:"cac:Item"`
	Price               Price    `xml:"cac:Price"`
}

type Item struct {
	Description string       `xml:"cbc:Description"`
	Name        string       `xml:"cbc:Name"`
	TaxCategory *TaxCategory `xml:"cac:ClassifiedTaxCategory,omitempty"`
}

type Price struct {
	Amount       Amount    `xml:"cbc:PriceAmount"`
	BaseQuantity *Quantity `xml:"cbc:BaseQuantity,omitempty"`
}
