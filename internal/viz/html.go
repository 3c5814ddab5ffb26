package viz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// Page modes.
const (
	ModeLive   = "live"   // page queries the JSON API and listens for reload events
	ModeStatic = "static" // every view is embedded in the page
)

// Layout names.
const (
	LayoutPhysics      = "physics"
	LayoutHierarchical = "hierarchical"
)

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{LayoutPhysics, LayoutHierarchical}

// DefaultTitle is the page title when none is configured.
const DefaultTitle = "Course Relationship Graph"

// Validation errors.
var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrInvalidMode   = errors.New("invalid mode")
)

// HTMLOptions configures page generation.
type HTMLOptions struct {
	Mode   string // ModeLive or ModeStatic
	Layout string // LayoutPhysics or LayoutHierarchical
	Title  string
	View   View   // initial view
	Course string // initial course for ViewNeighborhood
}

// DefaultOptions returns default page options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Mode:   ModeLive,
		Layout: LayoutPhysics,
		Title:  DefaultTitle,
		View:   ViewAll,
	}
}

// ValidateLayout checks if the layout option is valid.
func ValidateLayout(layout string) error {
	switch layout {
	case "", LayoutPhysics, LayoutHierarchical:
		return nil
	default:
		return fmt.Errorf("%w %q: must be physics or hierarchical", ErrInvalidLayout, layout)
	}
}

// GenerateHTML renders the interactive page. Static mode requires a snapshot; live mode
// ignores it.
func GenerateHTML(snap *Snapshot, opts HTMLOptions) (string, error) {
	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}
	view, err := ParseView(string(opts.View))
	if err != nil {
		return "", err
	}
	if view == ViewNeighborhood && opts.Course == "" {
		return "", ErrMissingCourse
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	snapshotJSON := "null"
	switch opts.Mode {
	case "", ModeLive:
		opts.Mode = ModeLive
	case ModeStatic:
		if snap == nil {
			return "", fmt.Errorf("static page requires a snapshot")
		}
		if snap.All.IsEmpty() && snap.Connected.IsEmpty() {
			return generateEmptyHTML(opts.Title), nil
		}
		snapshotJSON, err = snap.JSON()
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w %q: must be live or static", ErrInvalidMode, opts.Mode)
	}

	// The page decodes the snapshot with JSON.parse, so course names such as
	// "__proto__" become plain keys instead of object literal syntax.
	snapshotLiteral, err := json.Marshal(snapshotJSON)
	if err != nil {
		return "", fmt.Errorf("quoting snapshot: %w", err)
	}

	networkOptions, err := json.Marshal(networkOptionsFor(opts.Layout))
	if err != nil {
		return "", fmt.Errorf("marshaling network options: %w", err)
	}

	data := templateData{
		Title:          opts.Title,
		Mode:           opts.Mode,
		View:           string(view),
		Course:         opts.Course,
		SnapshotJSON:   template.JS(snapshotLiteral),
		NetworkOptions: template.JS(networkOptions),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title          string
	Mode           string
	View           string
	Course         string
	SnapshotJSON   template.JS // JS string literal holding the snapshot JSON
	NetworkOptions template.JS
}

// networkOptionsFor converts a layout name into vis-network options.
func networkOptionsFor(layout string) map[string]interface{} {
	opts := map[string]interface{}{
		"interaction": map[string]interface{}{"hover": true},
		"nodes": map[string]interface{}{
			"shape": "box",
			"font":  map[string]interface{}{"size": 14},
		},
		"edges": map[string]interface{}{
			"font":   map[string]interface{}{"size": 11, "align": "middle"},
			"smooth": map[string]interface{}{"type": "dynamic"},
		},
	}

	switch layout {
	case LayoutHierarchical:
		opts["layout"] = map[string]interface{}{
			"hierarchical": map[string]interface{}{
				"enabled":    true,
				"direction":  "LR",
				"sortMethod": "directed",
			},
		}
		opts["physics"] = map[string]interface{}{"enabled": false}
	default:
		opts["physics"] = map[string]interface{}{
			"enabled": true,
			"solver":  "forceAtlas2Based",
			"stabilization": map[string]interface{}{
				"iterations": 150,
			},
		}
	}
	return opts
}

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>Neither the syllabus nor the relation source produced any rows.</p>
    <p>Check the sources with <code>sylgraph check</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #toolbar {
      display: flex;
      gap: 8px;
      align-items: center;
      padding: 8px 12px;
      background: white;
      border-bottom: 1px solid #ddd;
    }
    #toolbar select {
      min-width: 280px;
    }
    #main {
      display: flex;
      height: calc(100vh - 50px);
    }
    #network {
      flex: 1;
      background: white;
    }
    #detail {
      width: 340px;
      padding: 12px;
      overflow-y: auto;
      border-left: 1px solid #ddd;
      font-size: 13px;
    }
    #detail dt {
      font-size: 10px;
      text-transform: uppercase;
      color: #888;
      margin-top: 8px;
    }
    #detail dd {
      margin: 2px 0 0 0;
      color: #333;
    }
    #detail .placeholder {
      color: #999;
      font-style: italic;
    }
  </style>
</head>
<body>
  <div id="toolbar">
    <button id="show-all" type="button">Show all</button>
    <button id="show-connected" type="button">Connected only</button>
    <select id="course-select">
      <option value="">Select a course</option>
    </select>
  </div>
  <div id="main">
    <div id="network"></div>
    <div id="detail">
      <p class="placeholder" id="detail-placeholder">Click a course to see its details.</p>
      <dl id="detail-fields" hidden>
        <dt>Course name</dt><dd data-field="course_name"></dd>
        <dt>Course code</dt><dd data-field="course_code"></dd>
        <dt>Regulation subject name</dt><dd data-field="regulation_subject_name"></dd>
        <dt>Campus</dt><dd data-field="campus"></dd>
        <dt>Instructor</dt><dd data-field="instructor"></dd>
        <dt>Subject group</dt><dd data-field="subject_group"></dd>
        <dt>Subject code</dt><dd data-field="subject_code"></dd>
        <dt>Language</dt><dd data-field="language"></dd>
        <dt>Term</dt><dd data-field="term"></dd>
        <dt>Syllabus</dt><dd><a data-field="url" target="_blank" rel="noopener"></a></dd>
      </dl>
    </div>
  </div>
  <script>
    (function() {
      const mode = "{{.Mode}}";
      const embedded = JSON.parse({{.SnapshotJSON}});
      const networkOptions = {{.NetworkOptions}};
      let current = {view: "{{.View}}", course: "{{.Course}}"};

      // Live mode asks the server; static mode reads the embedded snapshot.
      const api = {
        graph: function(view, course) {
          const q = new URLSearchParams({view: view});
          if (course) q.set('course', course);
          return fetch('api/graph?' + q.toString()).then(function(r) {
            return r.ok ? r.json() : Promise.reject(new Error('graph request failed: ' + r.status));
          });
        },
        options: function() {
          return fetch('api/courses').then(function(r) { return r.ok ? r.json() : []; });
        },
        course: function(name) {
          return fetch('api/courses/' + encodeURIComponent(name)).then(function(r) {
            return r.ok ? r.json() : null;
          });
        }
      };

      // Course names are data; never resolve them through Object.prototype.
      function own(obj, key) {
        return Object.prototype.hasOwnProperty.call(obj, key);
      }

      const local = embedded && {
        graph: function(view, course) {
          if (view === 'connected') return Promise.resolve(embedded.connected);
          if (view !== 'neighborhood') return Promise.resolve(embedded.all);
          const ref = own(embedded.neighborhoods, course) ? embedded.neighborhoods[course] : {nodes: [course], edges: []};
          const ids = new Set(ref.edges);
          return Promise.resolve({
            nodes: ref.nodes.map(function(id) { return {id: id, label: id}; }),
            edges: embedded.all.edges.filter(function(e) { return ids.has(e.id); })
          });
        },
        options: function() { return Promise.resolve(embedded.options); },
        course: function(name) {
          return Promise.resolve(own(embedded.courses, name) ? embedded.courses[name] : null);
        }
      };

      const source = mode === 'static' ? local : api;

      const network = new vis.Network(
        document.getElementById('network'),
        {nodes: new vis.DataSet(), edges: new vis.DataSet()},
        networkOptions);

      // update() upserts, so a repeated node id keeps the last node written.
      function setGraph(graph) {
        const nodes = new vis.DataSet();
        nodes.update(graph.nodes);
        const edges = new vis.DataSet();
        edges.update(graph.edges);
        network.setData({nodes: nodes, edges: edges});
      }

      function show(view, course) {
        current = {view: view, course: course || ''};
        return source.graph(current.view, current.course).then(setGraph).catch(function(err) {
          console.error(err);
        });
      }

      const select = document.getElementById('course-select');

      function loadOptions() {
        return source.options().then(function(options) {
          while (select.options.length > 1) select.remove(1);
          options.forEach(function(o) {
            const opt = document.createElement('option');
            opt.value = o.value;
            opt.textContent = o.label;
            select.appendChild(opt);
          });
          select.value = current.course;
        });
      }

      function safeURL(url) {
        return /^https?:\/\//i.test(url || '') ? url : '';
      }

      // A miss leaves the previous details in place.
      function showDetail(name) {
        return source.course(name).then(function(c) {
          if (!c) return;
          document.getElementById('detail-placeholder').hidden = true;
          document.getElementById('detail-fields').hidden = false;
          document.querySelectorAll('#detail [data-field]').forEach(function(el) {
            const field = el.getAttribute('data-field');
            if (field === 'url') {
              const href = safeURL(c.url);
              el.textContent = href ? href : (c.url || '');
              if (href) el.setAttribute('href', href); else el.removeAttribute('href');
            } else {
              el.textContent = c[field] || '';
            }
          });
        });
      }

      function selectCourse(name) {
        if (!name) return;
        select.value = name;
        showDetail(name);
        show('neighborhood', name);
      }

      document.getElementById('show-all').addEventListener('click', function() { show('all'); });
      document.getElementById('show-connected').addEventListener('click', function() { show('connected'); });
      select.addEventListener('change', function() { selectCourse(select.value); });
      network.on('click', function(params) {
        if (params.nodes.length > 0) selectCourse(params.nodes[0]);
      });

      if (mode === 'live' && window.EventSource) {
        const events = new EventSource('api/events');
        events.addEventListener('reload', function() {
          loadOptions();
          show(current.view, current.course);
        });
      }

      loadOptions();
      show(current.view, current.course);
      if (current.course) showDetail(current.course);
    })();
  </script>
</body>
</html>`
