// SPDX-License-Identifier: MIT

// Package mockapi is an in-memory stand-in for the Connect backend, used by
// package tests and for local development against the CLI.
package mockapi

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/connectapp/connect/internal/schedule"
)

// Messages returned in error bodies.
const (
	MsgAlreadyRegistered   = "Presença já registrada"
	MsgPalestraNotFound    = "Palestra não encontrada"
	MsgParticipantNotFound = "Participante não encontrado"
	MsgInvalidCredentials  = "Email ou senha inválidos"
	MsgEmailTaken          = "Email já cadastrado"
	MsgInvalidBody         = "Corpo da requisição inválido"
	MsgMissingIDs          = "participanteId e palestraId são obrigatórios"
	MsgMissingCredentials  = "Email e senha são obrigatórios"
	MsgRegistered          = "Presença registrada com sucesso"
	MsgLoggedIn            = "Login realizado com sucesso"
	MsgSignedUp            = "Usuário cadastrado com sucesso"
	MsgInternal            = "Erro interno do servidor"
	MsgUnauthorized        = "Não autorizado"
)

var (
	ErrAlreadyRegistered   = errors.New(MsgAlreadyRegistered)
	ErrPalestraNotFound    = errors.New(MsgPalestraNotFound)
	ErrParticipantNotFound = errors.New(MsgParticipantNotFound)
	ErrInvalidCredentials  = errors.New(MsgInvalidCredentials)
	ErrEmailTaken          = errors.New(MsgEmailTaken)
)

// Participant is a registered attendee account.
type Participant struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Senha string `json:"-"`
}

// Attendance is one registered presence.
type Attendance struct {
	ID             string             `json:"id"`
	ParticipanteID string             `json:"participanteId"`
	PalestraID     string             `json:"palestraId"`
	RegisteredAt   string             `json:"dataHoraPresenca"`
	Palestra       *schedule.Activity `json:"palestra,omitempty"`
}

// Fixtures seeds a Backend.
type Fixtures struct {
	Palestras    []schedule.Activity
	Participants []Participant
}

// DefaultFixtures is a small programme with one demo account.
func DefaultFixtures() Fixtures {
	return Fixtures{
		Palestras: []schedule.Activity{
			{
				ID: "42", Title: "Abertura: o futuro da computação", Type: "Palestra", Location: "Auditório Principal",
				Description: "Sessão de abertura do evento.",
				Slots:       []schedule.TimeSlot{{Start: "2025-05-10T09:00:00-03:00", End: "2025-05-10T10:00:00-03:00"}},
				Speakers:    []schedule.Speaker{{Name: "Ana Lúcia Moreira"}},
			},
			{
				ID: "43", Title: "Go na prática", Type: "Oficina", Location: "Laboratório 2",
				Description: "Concorrência e testes em Go.",
				Slots:       []schedule.TimeSlot{{Start: "2025-05-10T14:00:00-03:00", End: "2025-05-10T17:00:00-03:00"}},
				Speakers:    []schedule.Speaker{{Name: "João Pereira"}},
			},
			{
				ID: "44", Title: "Ética e inteligência artificial", Type: "Mesa Redonda", Location: "Sala 101",
				Slots: []schedule.TimeSlot{{Start: "2025-05-11T10:00:00-03:00", End: "2025-05-11T11:30:00-03:00"}},
				Speakers: []schedule.Speaker{
					{Name: "Carla Souza"},
					{Name: "Márcio Tavares"},
				},
			},
		},
		Participants: []Participant{
			{ID: "1", Email: "participante@connect.app", Senha: "connect123"},
		},
	}
}

// Backend holds the mock state. It is safe for concurrent use.
type Backend struct {
	now func() time.Time

	mu           sync.Mutex
	palestras    map[string]schedule.Activity
	order        []string
	participants map[string]Participant // by email
	byID         map[string]Participant
	attendance   []Attendance
	seen         map[[2]string]struct{}
	nextID       int
}

// NewBackend creates a backend seeded with f.
func NewBackend(f Fixtures, now func() time.Time) *Backend {
	if now == nil {
		now = time.Now
	}
	b := &Backend{
		now:          now,
		palestras:    make(map[string]schedule.Activity),
		participants: make(map[string]Participant),
		byID:         make(map[string]Participant),
		seen:         make(map[[2]string]struct{}),
		nextID:       1,
	}
	for _, p := range f.Palestras {
		b.palestras[p.ID] = p
		b.order = append(b.order, p.ID)
	}
	for _, p := range f.Participants {
		b.participants[strings.ToLower(p.Email)] = p
		b.byID[p.ID] = p
		if n, err := strconv.Atoi(p.ID); err == nil && n >= b.nextID {
			b.nextID = n + 1
		}
	}
	return b
}

// Palestras lists activities, optionally restricted to tipo.
func (b *Backend) Palestras(tipo string) []schedule.Activity {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]schedule.Activity, 0, len(b.order))
	for _, id := range b.order {
		p := b.palestras[id]
		if tipo != "" && !strings.EqualFold(p.Type, tipo) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Palestra looks up one activity.
func (b *Backend) Palestra(id string) (schedule.Activity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.palestras[id]
	return p, ok
}

// Register records participantID at palestraID.
func (b *Backend) Register(participantID, palestraID string) (Attendance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byID[participantID]; !ok {
		return Attendance{}, ErrParticipantNotFound
	}
	if _, ok := b.palestras[palestraID]; !ok {
		return Attendance{}, ErrPalestraNotFound
	}
	key := [2]string{participantID, palestraID}
	if _, dup := b.seen[key]; dup {
		return Attendance{}, ErrAlreadyRegistered
	}
	b.seen[key] = struct{}{}

	a := Attendance{
		ID:             strconv.Itoa(len(b.attendance) + 1),
		ParticipanteID: participantID,
		PalestraID:     palestraID,
		RegisteredAt:   b.now().UTC().Format(time.RFC3339),
	}
	b.attendance = append(b.attendance, a)
	return a, nil
}

// Attendance lists participantID's presences, newest first, with the
// activity embedded.
func (b *Backend) Attendance(participantID string) []Attendance {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []Attendance{}
	for _, a := range b.attendance {
		if a.ParticipanteID != participantID {
			continue
		}
		if p, ok := b.palestras[a.PalestraID]; ok {
			a.Palestra = &p
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RegisteredAt > out[j].RegisteredAt })
	return out
}

// Login checks credentials.
func (b *Backend) Login(email, senha string) (Participant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.participants[strings.ToLower(strings.TrimSpace(email))]
	if !ok || p.Senha != senha {
		return Participant{}, ErrInvalidCredentials
	}
	return p, nil
}

// SignUp creates an account.
func (b *Backend) SignUp(email, senha string) (Participant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, taken := b.participants[key]; taken {
		return Participant{}, ErrEmailTaken
	}
	p := Participant{ID: strconv.Itoa(b.nextID), Email: strings.TrimSpace(email), Senha: senha}
	b.nextID++
	b.participants[key] = p
	b.byID[p.ID] = p
	return p, nil
}
