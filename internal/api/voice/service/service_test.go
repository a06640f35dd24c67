package voiceService

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"KalaVaani/internal/api/voice"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
	"KalaVaani/pkg/offline"
	"KalaVaani/pkg/recovery"
	redisPkg "KalaVaani/pkg/redis"
	"KalaVaani/pkg/speech"
	"KalaVaani/pkg/utils"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// In-memory stand-ins for the postgres repositories. They keep the same
// not-found sentinels the real ones return so errors.Is checks in the
// service behave identically.

type fakeSessionStore struct {
	mu   sync.Mutex
	byID map[string]entity.VoiceSession
	err  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byID: make(map[string]entity.VoiceSession)}
}

func (f *fakeSessionStore) put(session entity.VoiceSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[session.ID] = session
}

func (f *fakeSessionStore) CreateSession(_ context.Context, session entity.VoiceSession) error {
	if f.err != nil {
		return f.err
	}
	f.put(session)
	return nil
}

func (f *fakeSessionStore) GetSessionByID(_ context.Context, id string) (entity.VoiceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byID[id]
	if !ok {
		return entity.VoiceSession{}, voice.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) GetActiveSessionByUserID(_ context.Context, userID string) (entity.VoiceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.byID {
		if session.UserID == userID && session.Active() {
			return session, nil
		}
	}
	return entity.VoiceSession{}, voice.ErrSessionNotFound
}

func (f *fakeSessionStore) UpdateSession(_ context.Context, session entity.VoiceSession) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[session.ID]; !ok {
		return voice.ErrSessionNotFound
	}
	f.byID[session.ID] = session
	return nil
}

func (f *fakeSessionStore) GetSessionsByUserID(_ context.Context, userID string, limit, offset int) ([]entity.VoiceSession, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []entity.VoiceSession
	for _, session := range f.byID {
		if session.UserID == userID {
			rows = append(rows, session)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartedAt.After(rows[j].StartedAt) })
	total := len(rows)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return rows[offset:end], total, nil
}

func (f *fakeSessionStore) EndStaleSessions(_ context.Context, cutoff time.Time) ([]entity.VoiceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var ended []entity.VoiceSession
	for id, session := range f.byID {
		if session.Active() && session.LastActivity.Before(cutoff) {
			endedAt := now
			session.EndedAt = &endedAt
			f.byID[id] = session
			ended = append(ended, session)
		}
	}
	return ended, nil
}

type fakeCommandStore struct {
	mu   sync.Mutex
	rows []entity.VoiceCommand
}

func (f *fakeCommandStore) CreateCommand(_ context.Context, cmd entity.VoiceCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, cmd)
	return nil
}

func (f *fakeCommandStore) GetCommandsBySessionID(_ context.Context, sessionID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []entity.VoiceCommand
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].SessionID == sessionID {
			rows = append(rows, f.rows[i])
		}
	}
	return pageCommands(rows, limit, offset)
}

func (f *fakeCommandStore) GetCommandsByUserID(_ context.Context, userID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []entity.VoiceCommand
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			rows = append(rows, f.rows[i])
		}
	}
	return pageCommands(rows, limit, offset)
}

func pageCommands(rows []entity.VoiceCommand, limit, offset int) ([]entity.VoiceCommand, int, error) {
	total := len(rows)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return rows[offset:end], total, nil
}

type fakePatternStore struct {
	mu   sync.Mutex
	byID map[string]entity.IntentPattern
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{byID: make(map[string]entity.IntentPattern)}
}

func (f *fakePatternStore) CreatePattern(_ context.Context, pattern entity.IntentPattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[pattern.ID] = pattern
	return nil
}

func (f *fakePatternStore) GetPatternByID(_ context.Context, id string) (entity.IntentPattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pattern, ok := f.byID[id]
	if !ok {
		return entity.IntentPattern{}, voice.ErrPatternNotFound
	}
	return pattern, nil
}

func (f *fakePatternStore) GetPatternsByLanguage(_ context.Context, lang string) ([]entity.IntentPattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.IntentPattern
	for _, pattern := range f.byID {
		if pattern.Language == lang {
			out = append(out, pattern)
		}
	}
	return out, nil
}

func (f *fakePatternStore) GetAllActivePatterns(_ context.Context) ([]entity.IntentPattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.IntentPattern, 0, len(f.byID))
	for _, pattern := range f.byID {
		out = append(out, pattern)
	}
	return out, nil
}

func (f *fakePatternStore) UpdatePattern(_ context.Context, pattern entity.IntentPattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[pattern.ID]; !ok {
		return voice.ErrPatternNotFound
	}
	f.byID[pattern.ID] = pattern
	return nil
}

func (f *fakePatternStore) DeactivatePattern(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return voice.ErrPatternNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakePreferenceStore struct {
	mu        sync.Mutex
	byUser    map[string]entity.LanguagePreference
	events    []entity.SwitchEvent
	upsertErr error
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{byUser: make(map[string]entity.LanguagePreference)}
}

func (f *fakePreferenceStore) UpsertPreference(_ context.Context, pref entity.LanguagePreference) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[pref.UserID] = pref
	return nil
}

func (f *fakePreferenceStore) GetPreferenceByUserID(_ context.Context, userID string) (entity.LanguagePreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pref, ok := f.byUser[userID]
	if !ok {
		return entity.LanguagePreference{}, voice.ErrPreferenceNotFound
	}
	return pref, nil
}

func (f *fakePreferenceStore) CreateSwitchEvent(_ context.Context, event entity.SwitchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePreferenceStore) GetSwitchHistory(_ context.Context, userID string, limit int) ([]entity.SwitchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.SwitchEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].UserID != userID {
			continue
		}
		out = append(out, f.events[i])
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeRepository struct {
	sessions  *fakeSessionStore
	commands  *fakeCommandStore
	patterns  *fakePatternStore
	prefs     *fakePreferenceStore
	clientErr error
	commitErr error
	commits   int
	rollbacks int
}

func (f *fakeRepository) NewClient(_ bool) (voiceRepository.Client, error) {
	if f.clientErr != nil {
		return voiceRepository.Client{}, f.clientErr
	}
	return voiceRepository.Client{
		Sessions:    f.sessions,
		Commands:    f.commands,
		Patterns:    f.patterns,
		Preferences: f.prefs,
		Commit:      func() error { f.commits++; return f.commitErr },
		Rollback:    func() error { f.rollbacks++; return nil },
	}, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) SaveBlob(_ context.Context, key string, blob []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (f *fakeBlobStore) LoadBlob(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[key]
	if !ok {
		return nil, redisPkg.ErrNotFound
	}
	return blob, nil
}

func (f *fakeBlobStore) DeleteBlob(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	uploads []string
}

func (f *fakeObjectStore) UploadAudio(_ []byte, name, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("voice/%d-%s", len(f.uploads)+1, name)
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeObjectStore) PresignUrl(fileName string) (string, error) {
	return "https://cdn.test/" + fileName, nil
}

type fakeRecognizer struct {
	transcript speech.Transcript
	err        error

	// entered and release, when set, park Transcribe mid-call so a test can
	// overlap a second input with a command that is still resolving.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRecognizer) Transcribe(_ context.Context, _ []byte, _ string) (speech.Transcript, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return speech.Transcript{}, f.err
	}
	return f.transcript, nil
}

type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(text), nil
}

type fakeStreamClient struct {
	mu        sync.Mutex
	partial   speech.Partial
	err       error
	connected bool
	frames    int
}

func (f *fakeStreamClient) ProcessAudioFrame(_ []byte, _ string) (*speech.Partial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
	if f.err != nil {
		return nil, f.err
	}
	partial := f.partial
	return &partial, nil
}

func (f *fakeStreamClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStreamClient) Reconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeStreamClient) Close() {}

// fixture wires a service instance from the real engine packages and the
// in-memory stores above. Only the process-external pieces are faked.
type fixture struct {
	svc         IVoiceService
	repo        *fakeRepository
	sessions    *fakeSessionStore
	commands    *fakeCommandStore
	patterns    *fakePatternStore
	prefs       *fakePreferenceStore
	blobs       *fakeBlobStore
	objects     *fakeObjectStore
	recognizer  *fakeRecognizer
	synthesizer *fakeSynthesizer
	stream      *fakeStreamClient
	reported    *capability.ReportedStore
	assessor    capability.IAssessor
	ctrl        fallback.IController
	recorder    analytics.IRecorder
	cache       offline.ICache
	resolver    intent.IResolver
}

type fixtureOptions struct {
	config       *VoiceConfig
	noRecognizer bool
	cacheBound   int
	eventBound   int
	blobs        *fakeBlobStore
}

func newFixture(opts fixtureOptions) *fixture {
	f := &fixture{
		sessions:    newFakeSessionStore(),
		commands:    &fakeCommandStore{},
		patterns:    newFakePatternStore(),
		prefs:       newFakePreferenceStore(),
		objects:     &fakeObjectStore{},
		recognizer:  &fakeRecognizer{},
		synthesizer: &fakeSynthesizer{},
		stream:      &fakeStreamClient{connected: true},
		blobs:       opts.blobs,
	}
	if f.blobs == nil {
		f.blobs = newFakeBlobStore()
	}
	f.repo = &fakeRepository{
		sessions: f.sessions,
		commands: f.commands,
		patterns: f.patterns,
		prefs:    f.prefs,
	}

	f.reported = capability.NewReportedStore()
	f.assessor = capability.NewAssessor(map[string]capability.Probe{
		capability.AudioCapture:      f.reported.Probe(capability.AudioCapture),
		capability.Network:           f.reported.Probe(capability.Network),
		capability.SpeechRecognition: f.reported.Probe(capability.SpeechRecognition),
		capability.SpeechSynthesis:   f.reported.Probe(capability.SpeechSynthesis),
	})

	log := testLogger()
	f.ctrl = fallback.NewController(log, f.assessor)

	cacheBound := opts.cacheBound
	if cacheBound <= 0 {
		cacheBound = 200
	}
	eventBound := opts.eventBound
	if eventBound <= 0 {
		eventBound = 1000
	}
	f.cache = offline.NewCache(cacheBound)
	f.recorder = analytics.NewRecorder(eventBound)
	f.resolver = intent.NewResolver()

	var recognizer speech.IRecognizer = f.recognizer
	if opts.noRecognizer {
		recognizer = nil
	}

	f.svc = NewVoiceService(
		log,
		f.repo,
		f.blobs,
		f.objects,
		utils.New(),
		f.resolver,
		f.cache,
		language.NewDetector(),
		f.recorder,
		recovery.NewHandler(log),
		f.ctrl,
		f.assessor,
		f.reported,
		recognizer,
		f.synthesizer,
		f.stream,
		opts.config,
	)
	return f
}

func (f *fixture) seedSession(id, userID, lang string) entity.VoiceSession {
	now := time.Now()
	session := entity.VoiceSession{
		ID:           id,
		UserID:       userID,
		Language:     lang,
		StartedAt:    now,
		LastActivity: now,
	}
	f.sessions.put(session)
	return session
}

func (f *fixture) seedEndedSession(id, userID, lang string) entity.VoiceSession {
	session := f.seedSession(id, userID, lang)
	endedAt := time.Now()
	session.EndedAt = &endedAt
	f.sessions.put(session)
	return session
}

func (f *fixture) storedSession(t *testing.T, id string) entity.VoiceSession {
	t.Helper()
	session, err := f.sessions.GetSessionByID(context.Background(), id)
	require.NoError(t, err)
	return session
}

func (f *fixture) storedCommands() []entity.VoiceCommand {
	f.commands.mu.Lock()
	defer f.commands.mu.Unlock()
	out := make([]entity.VoiceCommand, len(f.commands.rows))
	copy(out, f.commands.rows)
	return out
}
