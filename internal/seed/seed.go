// Package seed fills a development database with deterministic fake data.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/security"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/utils"
)

type Options struct {
	Profiles      int
	Organizations int
	Events        int
	Projects      int
	// Password is set on every seeded profile
	Password string
	// Seed makes runs reproducible
	Seed uint64
	Now  time.Time
}

func DefaultOptions() Options {
	return Options{
		Profiles:      50,
		Organizations: 12,
		Events:        20,
		Projects:      10,
		Password:      "community-dev",
		Seed:          1,
	}
}

// Result counts the created rows
type Result struct {
	Profiles      int `json:"profiles"`
	Organizations int `json:"organizations"`
	Networks      int `json:"networks"`
	Memberships   int `json:"memberships"`
	NetworkLinks  int `json:"networkLinks"`
	Events        int `json:"events"`
	Projects      int `json:"projects"`
	Awards        int `json:"awards"`
}

type seeder struct {
	store service.Repositories
	rng   *rand.Rand
	opts  Options

	profiles      []*domain.Profile
	organizations []*domain.Organization
	result        Result
}

// Run creates the fake data through the repositories
func Run(ctx context.Context, store service.Repositories, opts Options) (*Result, error) {
	if opts.Profiles < 1 {
		return nil, fmt.Errorf("at least one profile is required")
	}
	if opts.Password == "" {
		opts.Password = DefaultOptions().Password
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	s := &seeder{
		store: store,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		opts:  opts,
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"profiles", s.seedProfiles},
		{"organizations", s.seedOrganizations},
		{"memberships", s.seedMemberships},
		{"networks", s.seedNetworks},
		{"events", s.seedEvents},
		{"projects", s.seedProjects},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
		logger.Info("Seed step completed", "step", step.name)
	}
	return &s.result, nil
}

func (s *seeder) pick(list []string) string {
	return list[s.rng.IntN(len(list))]
}

func (s *seeder) randomProfile() *domain.Profile {
	return s.profiles[s.rng.IntN(len(s.profiles))]
}

func (s *seeder) seedProfiles(ctx context.Context) error {
	// one hash for all profiles keeps seeding fast
	hash, err := security.HashPassword(s.opts.Password)
	if err != nil {
		return err
	}
	for i := 0; i < s.opts.Profiles; i++ {
		first, last := s.pick(firstNames), s.pick(lastNames)
		username, err := utils.UniqueSlug(ctx, first+" "+last, s.store.Profiles.UsernameExists)
		if err != nil {
			return err
		}
		p := &domain.Profile{
			Username:      username,
			Email:         fmt.Sprintf("%s@example.org", username),
			PasswordHash:  hash,
			FirstName:     first,
			LastName:      last,
			Position:      s.pick(positions),
			Bio:           s.pick(bios),
			PublicFields:  []string{"position", "bio"},
			TermsAccepted: true,
		}
		if err := s.store.Profiles.Create(ctx, p); err != nil {
			return err
		}
		s.profiles = append(s.profiles, p)
	}
	s.result.Profiles = len(s.profiles)
	return nil
}

func (s *seeder) seedOrganizations(ctx context.Context) error {
	for i := 0; i < s.opts.Organizations; i++ {
		name := s.pick(orgPrefixes) + " " + s.pick(cities)
		types := []string{s.pick(domain.OrganizationTypes[1:])}
		// every fourth organization is a network
		if i%4 == 0 {
			types = append(types, domain.OrganizationTypeNetwork)
			s.result.Networks++
		}
		slug, err := utils.UniqueSlug(ctx, name, s.store.Organizations.SlugExists)
		if err != nil {
			return err
		}
		o := &domain.Organization{
			Slug:         slug,
			Name:         name,
			City:         s.pick(cities),
			Bio:          s.pick(bios),
			Types:        types,
			PublicFields: []string{"bio", "address"},
		}
		if err := s.store.Organizations.Create(ctx, o, s.randomProfile().ID); err != nil {
			return err
		}
		s.organizations = append(s.organizations, o)
	}
	s.result.Organizations = len(s.organizations)
	return nil
}

// seedMemberships invites profiles into team and admin lists and accepts the invites
func (s *seeder) seedMemberships(ctx context.Context) error {
	for _, o := range s.organizations {
		n := 1 + s.rng.IntN(4)
		for j := 0; j < n; j++ {
			p := s.randomProfile()
			role := domain.RoleMember
			if j == 0 {
				role = domain.RoleAdmin
			}
			ok, err := s.store.Organizations.IsMember(ctx, o.ID, p.ID)
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			invite := &domain.ProfileInvite{OrganizationID: o.ID, ProfileID: p.ID, Role: role, Status: domain.StatusPending}
			if err := s.store.Memberships.UpsertInvite(ctx, invite); err != nil {
				return err
			}
			if err := s.store.Memberships.AcceptInvite(ctx, o.ID, p.ID, role); err != nil {
				return err
			}
			s.result.Memberships++
		}
	}
	return nil
}

func (s *seeder) seedNetworks(ctx context.Context) error {
	for _, network := range s.organizations {
		if !network.IsNetwork() {
			continue
		}
		for _, o := range s.organizations {
			if o.ID == network.ID || s.rng.IntN(3) != 0 {
				continue
			}
			join := &domain.NetworkJoin{NetworkID: network.ID, OrganizationID: o.ID, Kind: domain.NetworkJoinInvite, Status: domain.StatusPending}
			if err := s.store.Networks.UpsertJoin(ctx, join); err != nil {
				return err
			}
			if err := s.store.Networks.AcceptJoin(ctx, domain.NetworkJoinInvite, network.ID, o.ID); err != nil {
				return err
			}
			s.result.NetworkLinks++
		}
	}
	return nil
}

func (s *seeder) seedEvents(ctx context.Context) error {
	for i := 0; i < s.opts.Events; i++ {
		name := s.pick(eventKinds) + " " + s.pick(cities)
		slug, err := utils.UniqueSlug(ctx, name, s.store.Events.SlugExists)
		if err != nil {
			return err
		}
		// spread events from two weeks ago to three months ahead
		start := s.opts.Now.Truncate(time.Hour).Add(time.Duration(s.rng.IntN(24*105)-24*14) * time.Hour)
		e := &domain.Event{
			Slug:             slug,
			Name:             name,
			Subline:          s.pick(bios),
			StartTime:        start,
			EndTime:          start.Add(time.Duration(2+s.rng.IntN(6)) * time.Hour),
			ParticipantLimit: []int{0, 10, 25, 100}[s.rng.IntN(4)],
			VenueCity:        s.pick(cities),
			Published:        s.rng.IntN(5) != 0,
		}
		creator := s.randomProfile()
		if err := s.store.Events.Create(ctx, e, creator.ID); err != nil {
			return err
		}
		if speaker := s.randomProfile(); speaker.ID != creator.ID {
			if err := s.store.Events.AddRelation(ctx, e.ID, domain.RelationSpeakers, speaker.ID); err != nil {
				return err
			}
		}
		if len(s.organizations) > 0 {
			o := s.organizations[s.rng.IntN(len(s.organizations))]
			if err := s.store.Events.AddResponsibleOrganization(ctx, e.ID, o.ID); err != nil {
				return err
			}
		}
		if e.Published {
			for j := s.rng.IntN(5); j > 0; j-- {
				if _, err := s.store.Events.Participate(ctx, e.ID, s.randomProfile().ID); err != nil {
					return err
				}
			}
		}
		s.result.Events++
	}
	return nil
}

func (s *seeder) seedProjects(ctx context.Context) error {
	award := &domain.Award{
		Slug:    "zukunftspreis",
		Title:   "Zukunftspreis",
		Subline: "für gemeinschaftliches Engagement",
		Date:    s.opts.Now.AddDate(-1, 0, 0),
	}
	if s.opts.Projects > 0 {
		if err := s.store.Projects.CreateAward(ctx, award); err != nil {
			return err
		}
		s.result.Awards++
	}

	for i := 0; i < s.opts.Projects; i++ {
		name := s.pick(projectKinds) + " " + s.pick(cities)
		slug, err := utils.UniqueSlug(ctx, name, s.store.Projects.SlugExists)
		if err != nil {
			return err
		}
		p := &domain.Project{
			Slug:      slug,
			Name:      name,
			Headline:  s.pick(bios),
			Excerpt:   s.pick(bios),
			Published: true,
		}
		if err := s.store.Projects.Create(ctx, p, s.randomProfile().ID); err != nil {
			return err
		}
		if len(s.organizations) > 0 {
			o := s.organizations[s.rng.IntN(len(s.organizations))]
			if err := s.store.Projects.AddResponsibleOrganization(ctx, p.ID, o.ID); err != nil {
				return err
			}
		}
		if i%3 == 0 {
			if err := s.store.Projects.AddAward(ctx, p.ID, award.ID); err != nil {
				return err
			}
		}
		s.result.Projects++
	}
	return nil
}
