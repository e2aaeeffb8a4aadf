package browser

const stopPickerScript = `(() => {
	if (window.__testforgePicker) {
		window.__testforgePicker.stop();
	}
	return true;
})()`

func getPickerScript() string {
	return `(() => {
		if (window.__testforgePicker) {
			window.__testforgePicker.start();
			return true;
		}

		const generateSelector = (el) => {
			const tag = el.tagName.toLowerCase();
			const selectors = [];

			const qaAttrs = ['data-qa', 'data-testid', 'data-test-id', 'data-test', 'data-cy'];
			for (const attr of qaAttrs) {
				const val = el.getAttribute(attr);
				if (val) {
					selectors.push(tag + '[' + attr + '="' + val + '"]');
					break;
				}
			}

			if (el.id && /^[a-zA-Z]/.test(el.id) && !el.id.includes(' ')) {
				selectors.push('#' + el.id);
			}

			if (el.name && ['input', 'select', 'textarea', 'button'].includes(tag)) {
				selectors.push(tag + '[name="' + el.name + '"]');
			}

			if (el.className && typeof el.className === 'string') {
				const classes = el.className.split(' ')
					.filter(c => c && !c.match(/^[0-9]/) && c.length < 40 && !c.match(/^[a-f0-9]{8,}$/))
					.slice(0, 2);
				if (classes.length > 0) {
					selectors.push(tag + '.' + classes.join('.'));
				}
			}

			if (selectors.length === 0) {
				let path = [];
				let current = el;
				let depth = 0;

				while (current && current.tagName && depth < 4) {
					const t = current.tagName.toLowerCase();
					if (current.id) {
						path.unshift('#' + current.id);
						break;
					}
					const index = Array.from(current.parentNode?.children || []).indexOf(current);
					if (index >= 0) {
						path.unshift(t + ':nth-child(' + (index + 1) + ')');
					}
					current = current.parentElement;
					depth++;
				}

				selectors.push(path.length > 0 ? path.join(' > ') : tag);
			}

			return selectors[0];
		};

		const generateXPath = (el) => {
			if (el.id) {
				return '//*[@id="' + el.id + '"]';
			}

			const parts = [];
			let current = el;

			while (current && current.nodeType === Node.ELEMENT_NODE) {
				let index = 1;
				let sibling = current.previousElementSibling;

				while (sibling) {
					if (sibling.tagName === current.tagName) {
						index++;
					}
					sibling = sibling.previousElementSibling;
				}

				parts.unshift(current.tagName.toLowerCase() + '[' + index + ']');
				current = current.parentElement;
			}

			return '/' + parts.join('/');
		};

		const frameChain = () => {
			const chain = [];
			let win = window;

			while (win !== win.parent) {
				try {
					chain.unshift(win.frameElement ? (win.frameElement.id || win.frameElement.name || 'frame') : 'frame');
					win = win.parent;
				} catch (e) {
					break;
				}
			}

			return chain;
		};

		const describeElement = (el) => {
			const rect = el.getBoundingClientRect();
			const attributes = {};

			for (const attr of el.attributes) {
				attributes[attr.name] = attr.value;
			}

			return {
				tag_name: el.tagName.toLowerCase(),
				element_id: el.id || '',
				name: el.getAttribute('name') || '',
				classes: (typeof el.className === 'string' ? el.className : '').split(' ').filter(c => c),
				attributes: attributes,
				inner_text: (el.innerText || '').trim().slice(0, 200),
				css_selector: generateSelector(el),
				xpath: generateXPath(el),
				rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
				frame_chain: frameChain()
			};
		};

		let active = false;
		let lastOutlined = null;

		const clearOutline = () => {
			if (lastOutlined) {
				lastOutlined.style.outline = '';
				lastOutlined = null;
			}
		};

		const onMouseOver = (event) => {
			if (!active) return;
			clearOutline();
			lastOutlined = event.target;
			lastOutlined.style.outline = '2px solid #e8590c';
		};

		const onClick = (event) => {
			if (!active) return;
			event.preventDefault();
			event.stopPropagation();

			const payload = describeElement(event.target);
			window.` + pickBindingName + `(JSON.stringify(payload));
		};

		document.addEventListener('mouseover', onMouseOver, true);
		document.addEventListener('click', onClick, true);

		window.__testforgePicker = {
			start: () => { active = true; },
			stop: () => { active = false; clearOutline(); }
		};

		window.__testforgePicker.start();
		return true;
	})()`
}
