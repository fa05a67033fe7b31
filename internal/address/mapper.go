package address

type Response struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	IsDefault    bool    `json:"is_default"`
}

func ToResponse(a *Address) *Response {
	return &Response{
		ID:           a.ID.String(),
		Name:         a.Name,
		Phone:        a.Phone,
		AddressLine1: a.Address1,
		AddressLine2: a.Address2,
		City:         a.City,
		Province:     a.Province,
		PostalCode:   a.Postal,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
	}
}

func ToResponses(items []*Address) []*Response {
	res := make([]*Response, 0, len(items))
	for _, a := range items {
		res = append(res, ToResponse(a))
	}
	return res
}
