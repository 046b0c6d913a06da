package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	memberModel "library-backend/internal/domains/member/model"
)

const DefaultRandomUserURL = "https://randomuser.me"

// RandomUser is the subset of a randomuser.me result we import.
type RandomUser struct {
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Cell     string `json:"cell"`
	Location struct {
		Street struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"street"`
		City     string   `json:"city"`
		State    string   `json:"state"`
		Postcode postcode `json:"postcode"`
	} `json:"location"`
}

type randomUserResponse struct {
	Results []RandomUser `json:"results"`
}

type RandomUserClient struct {
	baseURL    string
	nat        string
	httpClient *http.Client
}

func NewRandomUserClient(baseURL string) *RandomUserClient {
	if baseURL == "" {
		baseURL = DefaultRandomUserURL
	}
	return &RandomUserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		nat:     "us",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns up to n generated users.
func (c *RandomUserClient) Fetch(ctx context.Context, n int) ([]RandomUser, error) {
	params := url.Values{}
	params.Set("results", strconv.Itoa(n))
	params.Set("nat", c.nat)

	var body randomUserResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/api/?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("randomuser fetch: %w", err)
	}
	return body.Results, nil
}

func (u RandomUser) ToMember() *memberModel.Member {
	phone := u.Phone
	if phone == "" {
		phone = u.Cell
	}

	loc := u.Location
	street := strings.TrimSpace(fmt.Sprintf("%d %s", loc.Street.Number, loc.Street.Name))
	if loc.Street.Number == 0 {
		street = strings.TrimSpace(loc.Street.Name)
	}
	address := strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s", street, loc.City, loc.State, loc.Postcode))
	if strings.Trim(address, ", ") == "" {
		address = ""
	}

	return &memberModel.Member{
		Name:    strings.TrimSpace(u.Name.First + " " + u.Name.Last),
		Email:   strings.TrimSpace(u.Email),
		Phone:   phone,
		Address: address,
	}
}

// postcode accepts the JSON number or string randomuser.me returns
// depending on nationality.
type postcode string

func (p *postcode) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*p = ""
		return nil
	}
	*p = postcode(strings.Trim(raw, `"`))
	return nil
}
