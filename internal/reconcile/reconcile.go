// Package reconcile decides whether a local installer is outdated against
// the catalog's current state for the same product.
package reconcile

import (
	"context"
	"strconv"
	"strings"

	"github.com/1024mb/gog-installer-update-checker/internal/gog"
	"github.com/1024mb/gog-installer-update-checker/internal/installer"
	"github.com/1024mb/gog-installer-update-checker/internal/naming"
	"github.com/1024mb/gog-installer-update-checker/internal/policy"
)

// Unknown is the report placeholder for a marker that could not be
// determined.
const Unknown = "Unknown"

// RemoteInfo is the catalog's current state for one product.
type RemoteInfo struct {
	Found       bool
	VersionName string
	BuildID     string
	Generation  naming.Generation
}

// Finding is one confirmed update, ready for the report.
type Finding struct {
	ProductID     string
	ProductName   string
	LocalVersion  string
	LocalBuild    string
	RemoteVersion string
	RemoteBuild   string
	LocalLegacy   bool
	RemoteLegacy  bool
}

// CatalogClient is the slice of the catalog API that remote-state
// composition needs. *gog.Client satisfies it.
type CatalogClient interface {
	FetchBuilds(ctx context.Context, productID string) (*gog.BuildsResult, error)
	ResolvePackProduct(ctx context.Context, productID string) (string, error)
	LegacyManifestVersion(ctx context.Context, productID, legacyBuildID string) (string, bool, error)
}

// Logger is the logging surface used while composing and comparing.
type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// FetchRemote composes the catalog state for productID. An empty feed is
// retried once through pack resolution, because pack products publish their
// builds under the included game. A product that stays without builds is
// reported as not found.
func FetchRemote(ctx context.Context, client CatalogClient, productID string, log Logger) RemoteInfo {
	feed, err := client.FetchBuilds(ctx, productID)
	if err != nil {
		log.Warn("Couldn't fetch builds for product %s: %v", productID, err)
		return RemoteInfo{}
	}

	if len(feed.Items) == 0 {
		resolved, err := client.ResolvePackProduct(ctx, productID)
		if err != nil || resolved == "" || resolved == productID {
			log.Warn("No builds published for product %s", productID)
			return RemoteInfo{}
		}
		log.Debug("Product %s is a pack, following included game %s", productID, resolved)
		feed, err = client.FetchBuilds(ctx, resolved)
		if err != nil || len(feed.Items) == 0 {
			log.Warn("No builds published for product %s", productID)
			return RemoteInfo{}
		}
		productID = resolved
	}

	newest := feed.Items[0]
	if newest.LegacyBuildID.String() == "" {
		return RemoteInfo{
			Found:       true,
			VersionName: newest.VersionName,
			BuildID:     newest.BuildID.String(),
			Generation:  naming.GenModern,
		}
	}

	info := RemoteInfo{Found: true, Generation: naming.GenLegacy, BuildID: newest.LegacyBuildID.String()}
	version, ok, err := client.LegacyManifestVersion(ctx, productID, newest.LegacyBuildID.String())
	if err != nil {
		log.Warn("Couldn't fetch the legacy manifest for product %s: %v", productID, err)
		return info
	}
	if ok {
		info.VersionName = version
	}
	return info
}

// BuildLookup backfills a version name from a build id.
type BuildLookup interface {
	VersionByBuild(ctx context.Context, productID, buildID string) (string, bool)
}

// Reconciler applies the update decision rules.
type Reconciler struct {
	policy *policy.Policy
	lookup BuildLookup
	log    Logger
}

// New returns a Reconciler over the given policy and build lookup.
func New(pol *policy.Policy, lookup BuildLookup, log Logger) *Reconciler {
	return &Reconciler{policy: pol, lookup: lookup, log: log}
}

// Compare decides whether rec is outdated against remote. It returns a
// Finding and true when an update is due. Records that cannot be verified
// are logged at error level and skipped.
func (r *Reconciler) Compare(ctx context.Context, rec *installer.Record, remote RemoteInfo) (*Finding, bool) {
	if !remote.Found {
		if rec.Generation == naming.GenLegacy {
			// The product vanished from the content system; nothing to
			// compare a first-generation installer against.
			r.log.Debug("Product %s (%s) has no catalog state, skipping", rec.ProductName, rec.ProductID)
			return nil, false
		}
		r.log.Warn("Product %s (%s) has no catalog state, skipping", rec.ProductName, rec.ProductID)
		return nil, false
	}

	if rec.Generation == naming.GenModern {
		return r.compareModern(ctx, rec, remote)
	}
	if remote.Generation == naming.GenLegacy {
		return r.compareAgainstLegacy(rec, remote)
	}
	// The catalog moved to the new packaging while the local installer is
	// still first generation. Always an update.
	return r.finding(rec, remote), true
}

// compareModern handles a current-generation installer. Build ids are
// authoritative when both are known, whichever packaging the catalog
// publishes; otherwise normalized version names decide.
func (r *Reconciler) compareModern(ctx context.Context, rec *installer.Record, remote RemoteInfo) (*Finding, bool) {
	localBuild, localErr := strconv.Atoi(rec.BuildID)
	remoteBuild, remoteErr := strconv.Atoi(remote.BuildID)

	if localErr == nil && remoteErr == nil {
		if remoteBuild <= localBuild {
			return nil, false
		}
		f := r.finding(rec, remote)
		if f.LocalVersion == Unknown {
			if version, ok := r.lookup.VersionByBuild(ctx, rec.ProductID, rec.BuildID); ok {
				f.LocalVersion = version
			}
		}
		return f, true
	}

	// Without a build id pair the version name is the only evidence.
	if rec.VersionName == "" || remote.VersionName == "" {
		r.log.Error("Couldn't determine a version or build for %s (%s); the installer is unverifiable",
			rec.ProductName, rec.ProductID)
		return nil, false
	}
	if r.policy.VersionsMatch(rec.ProductID, rec.VersionName, remote.VersionName) {
		return nil, false
	}
	local := naming.NormalizeVersionName(rec.VersionName)
	remoteNorm := naming.NormalizeVersionName(remote.VersionName)
	if strings.EqualFold(local, remoteNorm) {
		return nil, false
	}
	return r.finding(rec, remote), true
}

// compareAgainstLegacy handles a first-generation installer against a
// catalog that still publishes a first-generation build. Versions are
// compared verbatim; normalizing them
// would hide the textual drift those builds are known for.
func (r *Reconciler) compareAgainstLegacy(rec *installer.Record, remote RemoteInfo) (*Finding, bool) {
	if remote.VersionName == "" {
		r.log.Warn("No version published for the first-generation build of %s (%s), skipping",
			rec.ProductName, rec.ProductID)
		return nil, false
	}
	if r.policy.VersionsMatch(rec.ProductID, rec.VersionName, remote.VersionName) {
		return nil, false
	}
	if rec.VersionName == remote.VersionName {
		return nil, false
	}
	return r.finding(rec, remote), true
}

func (r *Reconciler) finding(rec *installer.Record, remote RemoteInfo) *Finding {
	return &Finding{
		ProductID:     rec.ProductID,
		ProductName:   rec.ProductName,
		LocalVersion:  orUnknown(rec.VersionName),
		LocalBuild:    orUnknown(rec.BuildID),
		RemoteVersion: orUnknown(remote.VersionName),
		RemoteBuild:   orUnknown(remote.BuildID),
		LocalLegacy:   rec.Generation == naming.GenLegacy,
		RemoteLegacy:  remote.Generation == naming.GenLegacy,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
