package stubs

import (
	"time"

	"socialgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

type ProfileStub struct {
	profile entities.Profile
}

func NewProfileStub() ProfileStub {
	profile := entities.Profile{
		ID:        gofakeit.UUID(),
		Name:      faker.Name(),
		Email:     faker.Email(),
		Location:  gofakeit.City() + ", " + gofakeit.StateAbr(),
		Bio:       faker.Sentence(),
		Privacy:   entities.PrivacyPublic,
		CreatedAt: gofakeit.DateRange(time.Now().AddDate(-3, 0, 0), time.Now()).UTC().Truncate(time.Microsecond),
	}

	return ProfileStub{profile: profile}
}

func (ps ProfileStub) WithID(id string) ProfileStub {
	ps.profile.ID = id
	return ps
}

func (ps ProfileStub) WithName(name string) ProfileStub {
	ps.profile.Name = name
	return ps
}

func (ps ProfileStub) WithEmail(email string) ProfileStub {
	ps.profile.Email = email
	return ps
}

func (ps ProfileStub) WithLocation(location string) ProfileStub {
	ps.profile.Location = location
	return ps
}

func (ps ProfileStub) WithPrivacy(privacy entities.Privacy) ProfileStub {
	ps.profile.Privacy = privacy
	return ps
}

func (ps ProfileStub) WithCreatedAt(createdAt time.Time) ProfileStub {
	ps.profile.CreatedAt = createdAt
	return ps
}

func (ps ProfileStub) Get() entities.Profile {
	return ps.profile
}
