package application

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"
)

// fakeShopify records every call and serves products, pages and themes from memory.
type fakeShopify struct {
	mu sync.Mutex

	calls         []string
	products      map[string]*domain.ProductRef
	pages         map[string]*domain.PageRef
	themes        map[string]*domain.ThemeRef
	nextID        uint64
	lastProduct   domain.ProductInput
	uploaded      []string
	failAssets    map[string]bool
	createErr     error
	publishErr    error
	exchangeToken string
	verifyURL     bool
	shopErr       error
}

func newFakeShopify() *fakeShopify {
	return &fakeShopify{
		products:      make(map[string]*domain.ProductRef),
		pages:         make(map[string]*domain.PageRef),
		themes:        make(map[string]*domain.ThemeRef),
		nextID:        100,
		failAssets:    make(map[string]bool),
		exchangeToken: "shpat_token",
		verifyURL:     true,
	}
}

func (f *fakeShopify) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeShopify) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeShopify) calledTimes(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeShopify) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeShopify) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state + "&redirect_uri=" + url.QueryEscape(redirectURI) + "&scope=" + strings.Join(scopes, ","), nil
}

func (f *fakeShopify) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	return f.verifyURL, nil
}

func (f *fakeShopify) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	f.record("ExchangeToken")
	return f.exchangeToken, nil
}

func (f *fakeShopify) VerifyWebhookRequest(r *http.Request) bool { return true }

func (f *fakeShopify) GetShop(ctx context.Context, shop string, accessToken string) (*domain.ShopInfo, error) {
	f.record("GetShop")
	if f.shopErr != nil {
		return nil, f.shopErr
	}
	return &domain.ShopInfo{Domain: shop, MyshopifyDomain: shop, Name: "Demo"}, nil
}

func (f *fakeShopify) FindProductByHandle(ctx context.Context, shop string, accessToken string, handle string) (*domain.ProductRef, error) {
	f.record("FindProductByHandle")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[handle], nil
}

func (f *fakeShopify) CreateProduct(ctx context.Context, shop string, accessToken string, product domain.ProductInput) (*domain.ProductRef, error) {
	f.record("CreateProduct")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProduct = product
	ref := &domain.ProductRef{ID: f.id(), Handle: product.Handle, VariantID: f.id(), SKU: product.SKU}
	f.products[product.Handle] = ref
	return ref, nil
}

func (f *fakeShopify) UpdateProduct(ctx context.Context, shop string, accessToken string, productID uint64, product domain.ProductInput) (*domain.ProductRef, error) {
	f.record("UpdateProduct")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProduct = product
	ref := f.products[product.Handle]
	return &domain.ProductRef{ID: productID, Handle: product.Handle, VariantID: ref.VariantID, SKU: product.SKU}, nil
}

func (f *fakeShopify) FindPageByHandle(ctx context.Context, shop string, accessToken string, handle string) (*domain.PageRef, error) {
	f.record("FindPageByHandle")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[handle], nil
}

func (f *fakeShopify) CreatePage(ctx context.Context, shop string, accessToken string, page domain.PageInput) (*domain.PageRef, error) {
	f.record("CreatePage")
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := &domain.PageRef{ID: f.id(), Handle: page.Handle}
	f.pages[page.Handle] = ref
	return ref, nil
}

func (f *fakeShopify) UpdatePage(ctx context.Context, shop string, accessToken string, pageID uint64, page domain.PageInput) (*domain.PageRef, error) {
	f.record("UpdatePage")
	return &domain.PageRef{ID: pageID, Handle: page.Handle}, nil
}

func (f *fakeShopify) PublishPage(ctx context.Context, shop string, accessToken string, pageID uint64) error {
	f.record("PublishPage")
	return f.publishErr
}

func (f *fakeShopify) FindThemeByName(ctx context.Context, shop string, accessToken string, name string) (*domain.ThemeRef, error) {
	f.record("FindThemeByName")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.themes[name], nil
}

func (f *fakeShopify) CreateTheme(ctx context.Context, shop string, accessToken string, name string) (*domain.ThemeRef, error) {
	f.record("CreateTheme")
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := &domain.ThemeRef{ID: f.id(), Name: name, Role: "unpublished"}
	f.themes[name] = ref
	return ref, nil
}

func (f *fakeShopify) UploadAsset(ctx context.Context, shop string, accessToken string, themeID uint64, asset domain.ThemeAsset) error {
	f.record("UploadAsset")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAssets[asset.Key] {
		return domain.NewError(domain.KindProviderError, "Shopify request failed", errors.New("422"))
	}
	f.uploaded = append(f.uploaded, asset.Key)
	return nil
}

func (f *fakeShopify) PublishTheme(ctx context.Context, shop string, accessToken string, themeID uint64) error {
	f.record("PublishTheme")
	return f.publishErr
}

// fakeConnections keys connections by user and shop.
type fakeConnections struct {
	mu     sync.Mutex
	conns  map[string]*domain.ExternalConnection
	getErr error
}

func newFakeConnections() *fakeConnections {
	return &fakeConnections{conns: make(map[string]*domain.ExternalConnection)}
}

func (f *fakeConnections) Upsert(ctx context.Context, conn *domain.ExternalConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *conn
	f.conns[conn.UserID+"|"+conn.ShopDomain] = &c
	return nil
}

func (f *fakeConnections) GetActive(ctx context.Context, userID, shopDomain string) (*domain.ExternalConnection, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.conns[userID+"|"+shopDomain]
	if c == nil || !c.Active {
		return nil, nil
	}
	return c, nil
}

func (f *fakeConnections) ListByUser(ctx context.Context, userID string) ([]*domain.ExternalConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ExternalConnection
	for _, c := range f.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConnections) DeactivateByShop(ctx context.Context, shopDomain string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.conns {
		if c.ShopDomain == shopDomain && c.Active {
			c.Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeConnections) Delete(ctx context.Context, userID, shopDomain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "|" + shopDomain
	if _, ok := f.conns[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.conns, key)
	return nil
}

// fakeStores is an in-memory deployed store repository.
type fakeStores struct {
	mu        sync.Mutex
	stores    map[string]*domain.DeployedStore
	upsertErr error
}

func newFakeStores() *fakeStores {
	return &fakeStores{stores: make(map[string]*domain.DeployedStore)}
}

func (f *fakeStores) Upsert(ctx context.Context, store *domain.DeployedStore) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *store
	f.stores[store.Subdomain] = &s
	return nil
}

func (f *fakeStores) GetBySubdomain(ctx context.Context, subdomain string) (*domain.DeployedStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[subdomain]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStores) find(userID, id string) *domain.DeployedStore {
	for _, s := range f.stores {
		if s.ID == id && s.UserID == userID {
			return s
		}
	}
	return nil
}

func (f *fakeStores) Get(ctx context.Context, userID, id string) (*domain.DeployedStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := f.find(userID, id); s != nil {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStores) List(ctx context.Context, userID string) ([]*domain.DeployedStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.DeployedStore
	for _, s := range f.stores {
		if s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeStores) UpdateStatus(ctx context.Context, userID, id string, status domain.StoreStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(userID, id)
	if s == nil {
		return domain.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStores) UpdatePayment(ctx context.Context, userID, id string, payment *domain.PaymentConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(userID, id)
	if s == nil {
		return domain.ErrNotFound
	}
	s.Payment = payment
	return nil
}

func (f *fakeStores) IncrementVisits(ctx context.Context, subdomain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[subdomain]; ok {
		s.Visits++
	}
	return nil
}

func (f *fakeStores) IncrementOrders(ctx context.Context, subdomain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[subdomain]; ok {
		s.Orders++
	}
	return nil
}

func (f *fakeStores) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(userID, id)
	if s == nil {
		return domain.ErrNotFound
	}
	delete(f.stores, s.Subdomain)
	return nil
}

type fakeRecords struct {
	records []*domain.ExportRecord
	err     error
}

func (f *fakeRecords) Upsert(ctx context.Context, record *domain.ExportRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecords) GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.ExportRecord, error) {
	for _, r := range f.records {
		if r.UserID == userID && r.SourceURL == sourceURL {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRecords) List(ctx context.Context, userID string) ([]*domain.ExportRecord, error) {
	return f.records, nil
}

type fakeEvents struct {
	events []domain.ExportEvent
}

func (f *fakeEvents) PublishExport(ctx context.Context, event domain.ExportEvent) error {
	f.events = append(f.events, event)
	return nil
}

// fakeRenderer returns fixed markup so tests assert on pipeline behavior only.
type fakeRenderer struct{}

func (fakeRenderer) ProductPage(data domain.StoreData) (string, error) {
	return "<product>" + data.ProductName + "</product>", nil
}

func (fakeRenderer) HomePage(data domain.StoreData) (string, error) {
	return "<home>" + data.StoreName + "</home>", nil
}

func (fakeRenderer) LandingPage(data domain.StoreData) (string, error) {
	return "<landing>" + data.ProductName + "</landing>", nil
}

func (fakeRenderer) ThemeAssets(data domain.StoreData) ([]domain.ThemeAsset, error) {
	return []domain.ThemeAsset{
		{Key: "layout/theme.liquid", Value: "layout"},
		{Key: "templates/index.liquid", Value: "index"},
		{Key: "assets/store-generator.css", Value: "css"},
	}, nil
}

func (fakeRenderer) ProductBody(data domain.StoreData) (string, error) {
	return "<p>" + data.Description + "</p>", nil
}

type fakeGate struct {
	decision domain.GateDecision
	calls    int
}

func allowAll() *fakeGate {
	return &fakeGate{decision: domain.GateDecision{Allowed: true, Status: domain.SubscriptionActive, PlanName: "pro"}}
}

func (f *fakeGate) IsExportAllowed(ctx context.Context, user domain.UserRef) domain.GateDecision {
	f.calls++
	return f.decision
}

// fakeEncryption prefixes instead of encrypting.
type fakeEncryption struct{}

func (fakeEncryption) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (fakeEncryption) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", errors.New("cipher: message authentication failed")
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

type fakeDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*domain.Draft
	saves  int
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: make(map[string]*domain.Draft)}
}

func (f *fakeDraftStore) Save(ctx context.Context, draft *domain.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	c := *draft
	cur := *draft.Curator
	cur.Images = append([]domain.CuratedImage(nil), draft.Curator.Images...)
	c.Curator = &cur
	c.Data = draft.Data.Clone()
	f.drafts[draft.ID] = &c
	return nil
}

func (f *fakeDraftStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, nil
	}
	c := *d
	cur := *d.Curator
	cur.Images = append([]domain.CuratedImage(nil), d.Curator.Images...)
	c.Curator = &cur
	c.Data = d.Data.Clone()
	return &c, nil
}

func (f *fakeDraftStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, id)
	return nil
}

type fakeConfigs struct {
	configs map[string]*domain.SavedConfiguration
	err     error
}

func newFakeConfigs() *fakeConfigs {
	return &fakeConfigs{configs: make(map[string]*domain.SavedConfiguration)}
}

func (f *fakeConfigs) Upsert(ctx context.Context, cfg *domain.SavedConfiguration) error {
	if f.err != nil {
		return f.err
	}
	key := cfg.UserID + "|" + cfg.SourceURL
	if existing, ok := f.configs[key]; ok {
		cfg.ID = existing.ID
	} else {
		cfg.ID = "cfg-" + cfg.SourceURL
	}
	c := *cfg
	f.configs[key] = &c
	return nil
}

func (f *fakeConfigs) Get(ctx context.Context, userID, id string) (*domain.SavedConfiguration, error) {
	for _, c := range f.configs {
		if c.UserID == userID && c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConfigs) GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.SavedConfiguration, error) {
	return f.configs[userID+"|"+sourceURL], nil
}

func (f *fakeConfigs) List(ctx context.Context, userID string) ([]*domain.SavedConfiguration, error) {
	var out []*domain.SavedConfiguration
	for _, c := range f.configs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConfigs) Delete(ctx context.Context, userID, id string) error {
	for k, c := range f.configs {
		if c.UserID == userID && c.ID == id {
			delete(f.configs, k)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeExtractor struct {
	page *domain.ExtractedPage
	err  error
}

func (f *fakeExtractor) Scrape(ctx context.Context, url string, opts ports.ScrapeOptions) (*domain.ExtractedPage, error) {
	return f.page, f.err
}

type fakeTextGenerator struct {
	response string
	err      error
	system   string
}

func (f *fakeTextGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	f.system = system
	return f.response, f.err
}

type fakeImageGenerator struct {
	url       string
	err       error
	reference string
}

func (f *fakeImageGenerator) Generate(ctx context.Context, prompt, referenceURL string) (string, error) {
	f.reference = referenceURL
	return f.url, f.err
}

type fakeBilling struct {
	status      *domain.SubscriptionStatus
	err         error
	calls       int
	checkoutReq domain.CheckoutRequest
	webhookUser string
	webhookErr  error
}

func (f *fakeBilling) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	f.checkoutReq = req
	return "https://checkout.stripe.com/c/pay/cs_test", nil
}

func (f *fakeBilling) GetSubscriptionStatus(ctx context.Context, user domain.UserRef) (*domain.SubscriptionStatus, error) {
	f.calls++
	return f.status, f.err
}

func (f *fakeBilling) CreatePortalSession(ctx context.Context, user domain.UserRef, returnURL string) (string, error) {
	return "https://billing.stripe.com/p/session", nil
}

func (f *fakeBilling) ParseWebhook(payload []byte, signature string) (string, string, error) {
	return f.webhookUser, "customer.subscription.updated", f.webhookErr
}

// fakeStatusCache keeps decisions in memory and ignores the TTL.
type fakeStatusCache struct {
	decisions map[string]domain.GateDecision
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{decisions: make(map[string]domain.GateDecision)}
}

func (f *fakeStatusCache) Get(ctx context.Context, userID string) (*domain.GateDecision, error) {
	d, ok := f.decisions[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeStatusCache) Set(ctx context.Context, userID string, decision domain.GateDecision, ttl time.Duration) error {
	f.decisions[userID] = decision
	return nil
}

func (f *fakeStatusCache) Invalidate(ctx context.Context, userID string) error {
	delete(f.decisions, userID)
	return nil
}

type fakeSessions struct {
	sessions map[string]*domain.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessions) CreateSession(ctx context.Context, session *domain.Session) error {
	f.sessions[session.State] = session
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	return f.sessions[state], nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, state string) error {
	delete(f.sessions, state)
	return nil
}

type fakeMerchantCheckout struct {
	secret     string
	successURL string
}

func (f *fakeMerchantCheckout) CreateProductCheckout(ctx context.Context, secretKey string, data domain.StoreData, successURL, cancelURL string) (string, error) {
	f.secret = secretKey
	f.successURL = successURL
	return "https://checkout.stripe.com/c/pay/merchant", nil
}

var (
	_ ports.ShopifyClient           = (*fakeShopify)(nil)
	_ ports.ConnectionRepository    = (*fakeConnections)(nil)
	_ ports.DeployedStoreRepository = (*fakeStores)(nil)
	_ ports.ExportRecordRepository  = (*fakeRecords)(nil)
	_ ports.EventPublisher          = (*fakeEvents)(nil)
	_ ports.Renderer                = fakeRenderer{}
	_ ports.EncryptionService       = fakeEncryption{}
	_ ports.DraftStore              = (*fakeDraftStore)(nil)
	_ ports.ConfigurationRepository = (*fakeConfigs)(nil)
	_ ports.ExtractionProvider      = (*fakeExtractor)(nil)
	_ ports.TextGenerator           = (*fakeTextGenerator)(nil)
	_ ports.ImageGenerator          = (*fakeImageGenerator)(nil)
	_ ports.BillingProvider         = (*fakeBilling)(nil)
	_ ports.StatusCache             = (*fakeStatusCache)(nil)
	_ ports.SessionRepository       = (*fakeSessions)(nil)
	_ ports.MerchantCheckout        = (*fakeMerchantCheckout)(nil)
)
